package gitscore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/cache"
	"github.com/bluekornchips/gandalf/internal/execgit"
)

// Provider scores files by recent git activity. Scores are in [0,1],
// normalized against the most-touched file in the lookback window.
// Any git failure or timeout degrades to all-zero scores.
type Provider struct {
	root         string
	lookbackDays int
	timeout      time.Duration
	cache        *cache.Cache
	run          execgit.Runner
	log          zerolog.Logger
}

// New creates a provider for the repository at root. A nil cache
// disables caching; lookbackDays <= 0 defaults to 30.
func New(root string, lookbackDays int, c *cache.Cache, log zerolog.Logger) *Provider {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	return &Provider{
		root:         root,
		lookbackDays: lookbackDays,
		timeout:      10 * time.Second,
		cache:        c,
		run:          execgit.Run,
		log:          log,
	}
}

// ActivityScore returns the activity score for a path relative to the
// repository root. Unknown paths score zero.
func (p *Provider) ActivityScore(ctx context.Context, relPath string) float64 {
	scores := p.scores(ctx)
	return scores[relPath]
}

func (p *Provider) scores(ctx context.Context) map[string]float64 {
	key := fmt.Sprintf("gitscore:%s:%d", p.root, p.lookbackDays)
	if p.cache != nil {
		if data := p.cache.Get(key); data != nil {
			var cached map[string]float64
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	scores := p.scan(ctx)

	if p.cache != nil {
		if data, err := json.Marshal(scores); err == nil {
			p.cache.Put(key, data)
		}
	}
	return scores
}

// scan counts file occurrences across recent commits and normalizes
// by the maximum count.
func (p *Provider) scan(ctx context.Context) map[string]float64 {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	since := fmt.Sprintf("--since=%d days ago", p.lookbackDays)
	output, err := p.run(ctx, p.root, "log", since, "--name-only", "--format=")
	if err != nil {
		// Non-repo, missing git binary, timeout: all degrade the same way.
		p.log.Debug().Err(err).Str("root", p.root).Msg("git activity scan failed")
		return map[string]float64{}
	}

	counts := map[string]int{}
	maxCount := 0
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		counts[line]++
		if counts[line] > maxCount {
			maxCount = counts[line]
		}
	}

	scores := make(map[string]float64, len(counts))
	for path, count := range counts {
		scores[path] = float64(count) / float64(maxCount)
	}
	return scores
}
