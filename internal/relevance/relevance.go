package relevance

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/classify"
	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/pkg/models"
)

// NeutralRecency is returned when no timestamp can be resolved, so
// conversations with missing timestamps are not penalized.
const NeutralRecency = 0.5

var fileRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\w-]+(?:/[\w.-]+)+\.[A-Za-z0-9]{1,8}`), // dir/file.ext
	regexp.MustCompile(`\b[\w-]+\.[A-Za-z]{1,8}\b`),             // file.ext
}

// Scorer computes composite relevance for normalized conversations
type Scorer struct {
	root    string
	weights *config.Weights
	now     func() time.Time
	log     zerolog.Logger
}

// NewScorer creates a scorer rooted at the given project directory
func NewScorer(root string, w *config.Weights, log zerolog.Logger) *Scorer {
	return &Scorer{root: root, weights: w, now: time.Now, log: log}
}

// Score combines keyword, recency, file-reference and category signals
// into one composite relevance score. Sub-step failures contribute a
// zero or neutral component; Score itself never fails.
func (s *Scorer) Score(conv models.Conversation, contextKeywords []string) (float64, models.RelevanceAnalysis) {
	keywordScore, detected := KeywordScore(conv.Content, contextKeywords)
	recencyScore := s.recencyScore(conv)
	refs := s.fileReferences(conv.Content)
	fileScore := clamp01(float64(len(refs)) * s.weights.Get(config.WeightFileRefPerHit))
	cls := classify.Classify(conv.Content, s.weights)

	score := keywordScore*s.weights.Get(config.WeightKeywordMatch) +
		recencyScore*s.weights.Get(config.WeightRecency) +
		fileScore*s.weights.Get(config.WeightFileReference) +
		cls.PatternScore +
		cls.TypeBonus*s.weights.Get(config.WeightConvTypeBonus)

	if floor := s.weights.Get(config.WeightMinScore); score < floor {
		score = floor
	}

	return score, models.RelevanceAnalysis{
		KeywordScore:     keywordScore,
		RecencyScore:     recencyScore,
		FileScore:        fileScore,
		PatternScore:     cls.PatternScore,
		DetectedKeywords: detected,
		FileReferences:   refs,
		ConversationType: cls.Type,
		RelevanceScore:   score,
	}
}

// KeywordScore is the fraction of context keywords found in the text
// by case-insensitive substring match, in [0,1].
func KeywordScore(text string, keywords []string) (float64, []string) {
	if text == "" || len(keywords) == 0 {
		return 0, nil
	}
	lowered := strings.ToLower(text)

	var detected []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			detected = append(detected, kw)
		}
	}
	return float64(len(detected)) / float64(len(keywords)), detected
}

// recencyScore applies decay 1/(1+rate*daysOld), clamped to [0,1].
// An unresolvable timestamp scores neutral rather than zero.
func (s *Scorer) recencyScore(conv models.Conversation) float64 {
	ts, ok := ResolveTimestamp(conv)
	if !ok {
		return NeutralRecency
	}

	days := s.now().Sub(ts).Hours() / 24
	if days < 0 {
		days = 0
	}
	rate := s.weights.Get(config.WeightRecencyDecay)
	return clamp01(1 / (1 + rate*days))
}

// fileReferences scans content for filename-like substrings and keeps
// only those that exist on disk relative to the project root, in
// first-seen order without duplicates.
func (s *Scorer) fileReferences(content string) []string {
	if content == "" || s.root == "" {
		return nil
	}

	seen := map[string]bool{}
	var refs []string
	for _, re := range fileRefPatterns {
		for _, match := range re.FindAllString(content, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			if _, err := os.Stat(filepath.Join(s.root, match)); err == nil {
				refs = append(refs, match)
			}
		}
	}
	return refs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
