package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/assemble"
	"github.com/bluekornchips/gandalf/internal/cache"
	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/internal/filescore"
	"github.com/bluekornchips/gandalf/internal/gitscore"
	"github.com/bluekornchips/gandalf/internal/keywords"
	"github.com/bluekornchips/gandalf/internal/normalize"
	"github.com/bluekornchips/gandalf/internal/relevance"
	"github.com/bluekornchips/gandalf/internal/source"
	"github.com/bluekornchips/gandalf/internal/thread"
	"github.com/bluekornchips/gandalf/pkg/models"
)

const (
	defaultRecallLimit = 10
	analysisCacheTTL   = 10 * time.Minute

	// maxWalkFiles bounds the project walk for file ranking
	maxWalkFiles = 2000
)

// ignoredDirs are never descended into during the project walk
var ignoredDirs = map[string]bool{
	"node_modules": true, ".git": true, "dist": true, "build": true,
	"vendor": true, "__pycache__": true, ".venv": true, "venv": true,
	".next": true, ".nuxt": true, "target": true, "coverage": true,
	".cache": true,
}

// Engine wires the ranking pipeline together: sources feed the
// normalizer, the keyword generator supplies the relevance
// vocabulary, and scored results flow through the size optimizer.
// Each call runs synchronously to completion; the caches are the only
// shared mutable state.
type Engine struct {
	root       string
	weights    *config.Weights
	sources    []source.Source
	normalizer *normalize.Normalizer
	keywords   *keywords.Generator
	scorer     *relevance.Scorer
	fileScorer *filescore.Scorer
	analyses   *cache.Cache
	log        zerolog.Logger
}

// New creates an engine for the project at root
func New(root string, weights *config.Weights, sources []source.Source, log zerolog.Logger) *Engine {
	keywordCache := cache.New(64, 1<<20, 15*time.Minute)
	analysisCache := cache.New(1024, 8<<20, analysisCacheTTL)
	gitCache := cache.New(8, 1<<20, 5*time.Minute)

	git := gitscore.New(root, int(weights.Get(config.WeightGitLookbackDay)), gitCache, log)
	maxChars := int(weights.Get(config.WeightMaxContentLen))
	maxKeywords := int(weights.Get(config.WeightMaxKeywords))

	return &Engine{
		root:       root,
		weights:    weights,
		sources:    sources,
		normalizer: normalize.New(maxChars, log),
		keywords:   keywords.NewGenerator(maxKeywords, keywordCache, log),
		scorer:     relevance.NewScorer(root, weights, log),
		fileScorer: filescore.NewScorer(root, weights, git, log),
		analyses:   analysisCache,
		log:        log,
	}
}

// Keywords returns the context-keyword vocabulary for the project
func (e *Engine) Keywords() []string {
	return e.keywords.Generate(e.root)
}

// WatchKeywords starts invalidating the keyword cache when manifest
// files change, for long-lived serving. Returns a stop function.
func (e *Engine) WatchKeywords() (func(), error) {
	w := keywords.NewWatcher(e.root, e.keywords, 0, e.log)
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w.Stop, nil
}

// RecallOptions controls a conversation recall pass
type RecallOptions struct {
	Limit    int
	MaxBytes int
	Light    bool
}

// RecallResult is the JSON-serializable recall output
type RecallResult struct {
	Conversations []models.ScoredConversation `json:"conversations,omitempty"`
	Light         []models.LightConversation  `json:"lightConversations,omitempty"`
	Keywords      []string                    `json:"keywords"`
	SummaryMode   bool                        `json:"summaryMode"`
	Parameters    map[string]float64          `json:"parameters"`
}

// Recall runs the full pipeline: fetch, normalize, score, rank,
// size-optimize. Source failures degrade to "no data" with a warning;
// Recall only fails if every step of the pipeline is impossible.
func (e *Engine) Recall(ctx context.Context, opts RecallOptions) (*RecallResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultRecallLimit
	}

	contextKeywords := e.keywords.Generate(e.root)

	var scored []models.ScoredConversation
	for _, src := range e.sources {
		if !src.Available() {
			continue
		}
		records, err := src.Conversations(ctx)
		if err != nil {
			e.log.Warn().Err(err).Str("source", string(src.Name())).Msg("source read failed, skipping")
			continue
		}
		for _, record := range records {
			conv := e.normalizer.Normalize(record)
			score, analysis := e.scoreCached(conv, contextKeywords)
			scored = append(scored, models.ScoredConversation{
				Conversation:   conv,
				RelevanceScore: score,
				Analysis:       &analysis,
			})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].RelevanceScore > scored[b].RelevanceScore
	})
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	if opts.MaxBytes > 0 {
		scored = assemble.OptimizeConversations(scored, opts.MaxBytes)
	}

	result := &RecallResult{
		Keywords:   contextKeywords,
		Parameters: e.weights.Snapshot(),
	}
	if opts.Light {
		for _, c := range scored {
			result.Light = append(result.Light, c.Light())
		}
	} else {
		result.Conversations = scored
	}

	if data, err := json.Marshal(result); err == nil {
		result.SummaryMode = assemble.RecommendSummaryMode(len(data), 64<<10)
	}
	return result, nil
}

// scoreCached memoizes analyses by content hash so repeated passes
// over unchanged history skip the regex work.
func (e *Engine) scoreCached(conv models.Conversation, contextKeywords []string) (float64, models.RelevanceAnalysis) {
	key := analysisKey(conv, contextKeywords)
	if data := e.analyses.Get(key); data != nil {
		var cached models.RelevanceAnalysis
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached.RelevanceScore, cached
		}
	}

	score, analysis := e.scorer.Score(conv, contextKeywords)
	if data, err := json.Marshal(analysis); err == nil {
		e.analyses.Put(key, data)
	}
	return score, analysis
}

func analysisKey(conv models.Conversation, contextKeywords []string) string {
	h := sha256.New()
	h.Write([]byte(conv.Content))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(contextKeywords, ",")))
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

// Threads pairs prompt and generation entries from split-table
// sources (Cursor) into ordered conversational threads.
func (e *Engine) Threads(ctx context.Context) ([]models.Thread, error) {
	var prompts, generations []models.ThreadEntry
	for _, src := range e.sources {
		threaded, ok := src.(interface {
			ThreadEntries(ctx context.Context) ([]models.ThreadEntry, []models.ThreadEntry, error)
		})
		if !ok || !src.Available() {
			continue
		}
		p, g, err := threaded.ThreadEntries(ctx)
		if err != nil {
			e.log.Warn().Err(err).Str("source", string(src.Name())).Msg("thread entries read failed, skipping")
			continue
		}
		prompts = append(prompts, p...)
		generations = append(generations, g...)
	}
	return thread.Thread(prompts, generations), nil
}

// FilesOptions controls a file ranking pass
type FilesOptions struct {
	TopN        int
	ActiveFiles []string
}

// RankFiles walks the project (bounded, common build dirs skipped),
// scores every file and buckets the result into priority tiers.
func (e *Engine) RankFiles(ctx context.Context, opts FilesOptions) (models.RankedFiles, error) {
	if opts.TopN <= 0 {
		opts.TopN = 20
	}

	paths, err := e.walkProject()
	if err != nil {
		return models.RankedFiles{}, err
	}

	ranked := e.fileScorer.Rank(ctx, paths, opts.ActiveFiles)
	return e.fileScorer.Bucket(ranked, opts.TopN), nil
}

func (e *Engine) walkProject() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(e.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] || (strings.HasPrefix(d.Name(), ".") && path != e.root) {
				return filepath.SkipDir
			}
			return nil
		}
		if len(paths) >= maxWalkFiles {
			return filepath.SkipAll
		}
		if rel, err := filepath.Rel(e.root, path); err == nil {
			paths = append(paths, rel)
		}
		return nil
	})
	return paths, err
}

// SourceStatus reports one source's availability
type SourceStatus struct {
	Name      models.Source `json:"name"`
	Available bool          `json:"available"`
}

// Status summarizes source availability and cache occupancy
type Status struct {
	Sources  []SourceStatus `json:"sources"`
	Analyses cache.Stats    `json:"analysisCache"`
	Keywords []string       `json:"keywords"`
}

// Status reports what the engine can currently see
func (e *Engine) Status() Status {
	st := Status{
		Analyses: e.analyses.Stats(),
		Keywords: e.keywords.Generate(e.root),
	}
	for _, src := range e.sources {
		st.Sources = append(st.Sources, SourceStatus{
			Name:      src.Name(),
			Available: src.Available(),
		})
	}
	return st
}
