package thread

import (
	"math"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bluekornchips/gandalf/internal/relevance"
	"github.com/bluekornchips/gandalf/pkg/models"
)

const (
	// pairWindow is how far apart in time a prompt and generation may
	// be and still earn the time-proximity bonus
	pairWindow = 5 * time.Minute

	// acceptThreshold is the minimum pairing score for a match
	acceptThreshold = 0.5
)

// entryTimestampFields are the keys checked on raw prompt/generation rows
var entryTimestampFields = []string{
	"timestamp", "createdAt", "created_at", "unixMs", "time",
}

// Thread pairs prompt entries with generation entries using sequence
// proximity and a time-window heuristic. Assignment is greedy in
// prompt order: each prompt claims the best still-unused generation,
// with no backtracking. Input order is assumed chronological as stored.
//
// Every input entry appears in exactly one output thread; generations
// never claimed are emitted unpaired. The result is sorted descending
// by timestamp, entries without one sorting last.
func Thread(prompts, generations []models.ThreadEntry) []models.Thread {
	used := make([]bool, len(generations))
	threads := make([]models.Thread, 0, len(prompts)+len(generations))

	for i, prompt := range prompts {
		bestIdx := -1
		bestScore := 0.0

		for j, gen := range generations {
			if used[j] {
				continue
			}
			score := pairScore(i, j, prompt, gen)
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}

		t := models.Thread{ID: ulid.Make().String(), Prompt: prompt}
		if bestIdx >= 0 && bestScore > acceptThreshold {
			used[bestIdx] = true
			t.Generation = generations[bestIdx]
		} else {
			t.Unpaired = true
		}
		t.Timestamp = threadTimestamp(t)
		threads = append(threads, t)
	}

	for j, gen := range generations {
		if used[j] {
			continue
		}
		t := models.Thread{ID: ulid.Make().String(), Generation: gen, Unpaired: true}
		t.Timestamp = threadTimestamp(t)
		threads = append(threads, t)
	}

	sort.SliceStable(threads, func(a, b int) bool {
		return timestampKey(threads[a]) > timestampKey(threads[b])
	})
	return threads
}

// pairScore rates a candidate generation j for prompt i. Exact
// sequence alignment dominates, with a decaying proximity fallback
// and a bonus when both timestamps fall within the pair window.
func pairScore(i, j int, prompt, gen models.ThreadEntry) float64 {
	var score float64
	distance := i - j
	if distance < 0 {
		distance = -distance
	}

	switch {
	case j == i:
		score = 2.0
	case j == i+1:
		score = 1.5
	case distance <= 2:
		score = 1.0
	default:
		score = 0.5 / float64(distance)
	}

	pt, pok := EntryTimestamp(prompt)
	gt, gok := EntryTimestamp(gen)
	if pok && gok {
		delta := gt.Sub(pt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= pairWindow {
			score += 1.0
		}
	}

	return score
}

// EntryTimestamp extracts a timestamp from a raw prompt/generation row
func EntryTimestamp(e models.ThreadEntry) (time.Time, bool) {
	if e == nil {
		return time.Time{}, false
	}
	for _, field := range entryTimestampFields {
		if v, ok := e[field]; ok {
			if t, ok := relevance.ParseTimestamp(v); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func threadTimestamp(t models.Thread) *time.Time {
	if ts, ok := EntryTimestamp(t.Prompt); ok {
		return &ts
	}
	if ts, ok := EntryTimestamp(t.Generation); ok {
		return &ts
	}
	return nil
}

// timestampKey sorts missing timestamps as oldest possible
func timestampKey(t models.Thread) int64 {
	if t.Timestamp == nil {
		return math.MinInt64
	}
	return t.Timestamp.UnixNano()
}
