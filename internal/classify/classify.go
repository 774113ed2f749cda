package classify

import (
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/pkg/models"
)

// group holds one category's match vocabulary. The score weight is
// resolved through the weights provider by name, so category weights
// are tunable like every other weight; fallback covers categories
// without a configured name.
type group struct {
	keywords   []string
	patterns   []*regexp.Regexp
	weightName string
	fallback   float64
}

// groups preserves insertion order so that when two categories tie on
// match count, the first one registered wins. Go's map iteration is
// randomized, which would otherwise make the tie-break flap between runs.
var groups = buildGroups()

func buildGroups() *orderedmap.OrderedMap[models.ConversationType, group] {
	om := orderedmap.New[models.ConversationType, group]()

	om.Set(models.TypeArchitecture, group{
		keywords: []string{
			"architecture", "design", "structure", "framework", "system",
			"component", "module", "interface", "scalability", "microservice",
		},
		patterns: compile(
			`(?i)design\s+pattern`,
			`(?i)micro\s*services?`,
			`(?i)api\s+design`,
			`(?i)system\s+architecture`,
		),
		weightName: config.WeightArchitecture,
	})

	om.Set(models.TypeDebugging, group{
		keywords: []string{
			"debug", "error", "bug", "fix", "issue", "crash", "exception",
			"failure", "broken", "traceback",
		},
		patterns: compile(
			`(?i)stack\s*trace`,
			`(?i)not\s+working`,
			`(?i)nil\s+pointer`,
			`(?i)panic`,
			`(?i)segfault`,
		),
		weightName: config.WeightDebugging,
	})

	om.Set(models.TypeProblemSolving, group{
		keywords: []string{
			"solve", "solution", "implement", "approach", "optimize",
			"improve", "refactor", "strategy",
		},
		patterns: compile(
			`(?i)how\s+(do|can|to)\b`,
			`(?i)best\s+way`,
			`(?i)work\s*around`,
			`(?i)trade\s*offs?`,
		),
		weightName: config.WeightProblemSolving,
	})

	om.Set(models.TypeTechnical, group{
		keywords: []string{
			"function", "class", "method", "variable", "database", "query",
			"algorithm", "performance", "compile", "runtime",
		},
		patterns: compile(
			`(?i)time\s+complexity`,
			`(?i)memory\s+usage`,
			`(?i)sql\s+query`,
		),
		weightName: config.WeightTechnicalContent,
	})

	om.Set(models.TypeCodeDiscussion, group{
		keywords: []string{
			"review", "naming", "style", "convention", "readability",
			"test", "coverage", "lint",
		},
		patterns: compile(
			`(?i)code\s+review`,
			`(?i)pull\s+request`,
			`(?i)unit\s+test`,
		),
		fallback: 0.1,
	})

	return om
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// typeBonuses are flat additive bonuses for being a category at all,
// separate from the per-category pattern weight. Scaled by the
// conversation_type_bonus weight at the composite level.
var typeBonuses = map[models.ConversationType]float64{
	models.TypeDebugging:      0.25,
	models.TypeArchitecture:   0.2,
	models.TypeProblemSolving: 0.15,
	models.TypeTechnical:      0.1,
	models.TypeCodeDiscussion: 0.05,
	models.TypeGeneral:        0,
}

// Result is the classifier output for one conversation
type Result struct {
	Type         models.ConversationType
	PatternScore float64
	TypeBonus    float64
}

// Classify assigns a conversation type and pattern score from its
// content, resolving each category's weight through the provider.
// Content matching no category is classified general with a zero
// pattern score.
func Classify(content string, weights *config.Weights) Result {
	lowered := strings.ToLower(content)

	best := Result{Type: models.TypeGeneral}
	bestMatches := 0

	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		matches := 0
		for _, kw := range pair.Value.keywords {
			if strings.Contains(lowered, kw) {
				matches++
			}
		}
		for _, re := range pair.Value.patterns {
			if re.MatchString(content) {
				matches++
			}
		}
		// Strictly greater: the first group reaching the maximum wins.
		if matches > bestMatches {
			bestMatches = matches
			best = Result{
				Type:         pair.Key,
				PatternScore: float64(matches) * groupWeight(pair.Value, weights),
				TypeBonus:    typeBonuses[pair.Key],
			}
		}
	}

	return best
}

func groupWeight(g group, weights *config.Weights) float64 {
	if g.weightName == "" || weights == nil {
		return g.fallback
	}
	return weights.Get(g.weightName)
}
