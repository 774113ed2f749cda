package thread

import (
	"testing"
	"time"

	"github.com/bluekornchips/gandalf/pkg/models"
)

func entry(fields map[string]any) models.ThreadEntry {
	return models.ThreadEntry(fields)
}

func TestThread_PairsBySequenceAndTime(t *testing.T) {
	t.Parallel()

	base := float64(time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC).Unix())

	prompts := []models.ThreadEntry{
		entry(map[string]any{"text": "Q1", "timestamp": base}),
		entry(map[string]any{"text": "Q2", "timestamp": base + 100}),
	}
	generations := []models.ThreadEntry{
		entry(map[string]any{"textDescription": "A1", "timestamp": base + 10}),
		entry(map[string]any{"textDescription": "A2", "timestamp": base + 110}),
	}

	threads := Thread(prompts, generations)
	if len(threads) != 2 {
		t.Fatalf("len(threads)=%d, want 2", len(threads))
	}
	for i, th := range threads {
		if th.Unpaired {
			t.Fatalf("thread %d unpaired, want paired", i)
		}
		if th.Prompt == nil || th.Generation == nil {
			t.Fatalf("thread %d: prompt=%v generation=%v, want both", i, th.Prompt, th.Generation)
		}
	}

	// Descending by timestamp: the later Q2/A2 pair comes first.
	if got := threads[0].Prompt["text"]; got != "Q2" {
		t.Fatalf("threads[0].Prompt.text=%v, want Q2", got)
	}
	if got := threads[0].Generation["textDescription"]; got != "A2" {
		t.Fatalf("threads[0].Generation=%v, want A2", got)
	}
}

func TestThread_Completeness(t *testing.T) {
	t.Parallel()

	prompts := []models.ThreadEntry{
		entry(map[string]any{"text": "P0"}),
		entry(map[string]any{"text": "P1"}),
		entry(map[string]any{"text": "P2"}),
	}
	generations := []models.ThreadEntry{
		entry(map[string]any{"textDescription": "G0"}),
	}

	threads := Thread(prompts, generations)
	if len(threads) < 3 {
		t.Fatalf("len(threads)=%d, want >= max(len(prompts), len(generations))", len(threads))
	}

	prompMatched := map[string]int{}
	genMatched := map[string]int{}
	for _, th := range threads {
		if th.Prompt != nil {
			prompMatched[th.Prompt["text"].(string)]++
		}
		if th.Generation != nil {
			genMatched[th.Generation["textDescription"].(string)]++
		}
	}
	for _, p := range []string{"P0", "P1", "P2"} {
		if prompMatched[p] != 1 {
			t.Fatalf("prompt %s appears %d times, want exactly 1", p, prompMatched[p])
		}
	}
	if genMatched["G0"] != 1 {
		t.Fatalf("generation G0 appears %d times, want exactly 1", genMatched["G0"])
	}
}

func TestThread_UnpairedExclusivity(t *testing.T) {
	t.Parallel()

	prompts := []models.ThreadEntry{
		entry(map[string]any{"text": "P0"}),
	}
	generations := []models.ThreadEntry{
		entry(map[string]any{"textDescription": "G0"}),
		entry(map[string]any{"textDescription": "G1"}),
	}

	threads := Thread(prompts, generations)
	for i, th := range threads {
		oneSided := (th.Prompt == nil) != (th.Generation == nil)
		if th.Unpaired != oneSided {
			t.Fatalf("thread %d: unpaired=%v but prompt=%v generation=%v",
				i, th.Unpaired, th.Prompt != nil, th.Generation != nil)
		}
		if th.Prompt == nil && th.Generation == nil {
			t.Fatalf("thread %d has neither side", i)
		}
	}
}

func TestThread_MissingTimestampsSortLast(t *testing.T) {
	t.Parallel()

	base := float64(time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC).Unix())

	prompts := []models.ThreadEntry{
		entry(map[string]any{"text": "no-time"}),
		entry(map[string]any{"text": "timed", "timestamp": base}),
	}

	threads := Thread(prompts, nil)
	if len(threads) != 2 {
		t.Fatalf("len(threads)=%d, want 2", len(threads))
	}
	if threads[0].Prompt["text"] != "timed" {
		t.Fatalf("threads[0]=%v, want the timed prompt first", threads[0].Prompt)
	}
	if threads[1].Timestamp != nil {
		t.Fatalf("threads[1].Timestamp=%v, want nil", threads[1].Timestamp)
	}
}

func TestThread_Empty(t *testing.T) {
	t.Parallel()

	if got := Thread(nil, nil); len(got) != 0 {
		t.Fatalf("Thread(nil, nil)=%v, want empty", got)
	}
}
