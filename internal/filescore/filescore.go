package filescore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/pkg/models"
)

// Recency tiers: how recently a file was touched, widest tier last
const (
	tierHot  = time.Hour
	tierDay  = 24 * time.Hour
	tierWeek = 168 * time.Hour
)

// Size bands in bytes
const (
	sizeOptimalMin    = 1_000
	sizeOptimalMax    = 50_000
	sizeAcceptableMax = 200_000
)

// ActivityProvider supplies git activity scores in [0,1] per path
type ActivityProvider interface {
	ActivityScore(ctx context.Context, relPath string) float64
}

// Scorer ranks project files by recency, size, extension priority,
// directory importance, git activity and import-relationship
// heuristics. Same shape as the conversation scorer: weighted
// components summed, floor-clamped.
type Scorer struct {
	root    string
	weights *config.Weights
	git     ActivityProvider
	now     func() time.Time
	log     zerolog.Logger
}

// NewScorer creates a file scorer for the project at root. git may be
// nil, in which case the activity component contributes zero.
func NewScorer(root string, w *config.Weights, git ActivityProvider, log zerolog.Logger) *Scorer {
	return &Scorer{root: root, weights: w, git: git, now: time.Now, log: log}
}

// Score computes the relevance of a single file. activeFiles is the
// set of files the caller considers currently in play (open buffers,
// recent conversation mentions) for the mention and import heuristics.
func (s *Scorer) Score(ctx context.Context, relPath string, activeFiles []string) float64 {
	score := s.recencyComponent(relPath) +
		s.sizeComponent(relPath) +
		s.extensionComponent(relPath) +
		s.directoryComponent(relPath) +
		s.activityComponent(ctx, relPath) +
		s.mentionComponent(relPath, activeFiles) +
		s.importComponent(relPath, activeFiles)

	if floor := s.weights.Get(config.WeightMinScore); score < floor {
		score = floor
	}
	return score
}

// Rank scores every path and sorts descending. The sort is stable, so
// equal scores keep their input order.
func (s *Scorer) Rank(ctx context.Context, paths []string, activeFiles []string) []models.ScoredFile {
	scored := make([]models.ScoredFile, 0, len(paths))
	for _, p := range paths {
		scored = append(scored, models.ScoredFile{
			Path:  p,
			Score: s.Score(ctx, p, activeFiles),
		})
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	return scored
}

// Bucket splits ranked files into priority tiers by the configured
// thresholds and reports the parameters used, so a caller can see why
// the ranking came out the way it did.
func (s *Scorer) Bucket(ranked []models.ScoredFile, topN int) models.RankedFiles {
	high := s.weights.Get(config.WeightHighThreshold)
	medium := s.weights.Get(config.WeightMediumThresh)

	out := models.RankedFiles{
		HighPriorityFiles:   []models.ScoredFile{},
		MediumPriorityFiles: []models.ScoredFile{},
		LowPriorityFiles:    []models.ScoredFile{},
		TopFiles:            []string{},
		Parameters: map[string]any{
			"high_priority_threshold":   high,
			"medium_priority_threshold": medium,
			"weights":                   s.weights.Snapshot(),
		},
	}

	for _, f := range ranked {
		switch {
		case f.Score >= high:
			out.HighPriorityFiles = append(out.HighPriorityFiles, f)
		case f.Score >= medium:
			out.MediumPriorityFiles = append(out.MediumPriorityFiles, f)
		default:
			out.LowPriorityFiles = append(out.LowPriorityFiles, f)
		}
	}

	if topN > len(ranked) {
		topN = len(ranked)
	}
	for _, f := range ranked[:topN] {
		out.TopFiles = append(out.TopFiles, f.Path)
	}
	return out
}

func (s *Scorer) recencyComponent(relPath string) float64 {
	info, err := os.Stat(filepath.Join(s.root, relPath))
	if err != nil {
		return 0
	}
	age := s.now().Sub(info.ModTime())
	w := s.weights.Get(config.WeightRecentModification)

	switch {
	case age <= tierHot:
		return w
	case age <= tierDay:
		return 0.7 * w
	case age <= tierWeek:
		return 0.4 * w
	default:
		return 0
	}
}

func (s *Scorer) sizeComponent(relPath string) float64 {
	info, err := os.Stat(filepath.Join(s.root, relPath))
	if err != nil {
		return 0
	}
	size := info.Size()
	w := s.weights.Get(config.WeightFileSizeOptimal)

	switch {
	case size >= sizeOptimalMin && size <= sizeOptimalMax:
		return w
	case size <= sizeAcceptableMax:
		return 0.5 * w
	default:
		return 0.2 * w
	}
}

func (s *Scorer) extensionComponent(relPath string) float64 {
	ext := strings.ToLower(filepath.Ext(relPath))
	return s.weights.ExtensionPriority(ext) * s.weights.Get(config.WeightFileTypePriority)
}

// directoryComponent accumulates over every ancestor segment, not just
// the immediate parent, so src/core/handlers earns all three.
func (s *Scorer) directoryComponent(relPath string) float64 {
	dir := filepath.Dir(relPath)
	if dir == "." || dir == string(filepath.Separator) {
		return 0
	}
	w := s.weights.Get(config.WeightDirectoryImportance)

	var total float64
	for _, segment := range strings.Split(filepath.ToSlash(dir), "/") {
		if imp, ok := s.weights.DirectoryImportance(segment); ok {
			total += imp * w
		}
	}
	return total
}

func (s *Scorer) activityComponent(ctx context.Context, relPath string) float64 {
	if s.git == nil {
		return 0
	}
	return s.git.ActivityScore(ctx, relPath) * s.weights.Get(config.WeightGitActivity)
}

// mentionComponent rewards a file the conversation is directly about:
// exact membership in activeFiles. Related-but-different files are the
// import component's job.
func (s *Scorer) mentionComponent(relPath string, activeFiles []string) float64 {
	cleaned := filepath.Clean(relPath)
	for _, active := range activeFiles {
		if filepath.Clean(active) == cleaned {
			return s.weights.Get(config.WeightConversationMention)
		}
	}
	return 0
}

// importComponent is a naive stand-in for import-graph analysis:
// shared filename-stem substrings or a shared parent directory with
// an active file suggest a relationship. Capped at the weight.
func (s *Scorer) importComponent(relPath string, activeFiles []string) float64 {
	if len(activeFiles) == 0 {
		return 0
	}
	w := s.weights.Get(config.WeightImportRelationship)
	stem := fileStem(relPath)
	dir := filepath.Dir(relPath)

	var total float64
	for _, active := range activeFiles {
		if active == relPath {
			continue
		}
		activeStem := fileStem(active)
		if activeStem != "" && stem != "" &&
			(strings.Contains(stem, activeStem) || strings.Contains(activeStem, stem)) {
			total += 0.5 * w
		} else if filepath.Dir(active) == dir {
			total += 0.25 * w
		}
		if total >= w {
			return w
		}
	}
	return total
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
