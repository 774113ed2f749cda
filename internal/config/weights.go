package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Weight names used by the conversation relevance scorer
const (
	WeightKeywordMatch     = "keyword_match"
	WeightFileReference    = "file_reference"
	WeightRecency          = "recency"
	WeightTechnicalContent = "technical_content"
	WeightProblemSolving   = "problem_solving"
	WeightArchitecture     = "architecture"
	WeightDebugging        = "debugging"
)

// Weight names used by the file relevance scorer
const (
	WeightRecentModification  = "recent_modification"
	WeightFileSizeOptimal     = "file_size_optimal"
	WeightImportRelationship  = "import_relationship"
	WeightConversationMention = "conversation_mention"
	WeightGitActivity         = "git_activity"
	WeightFileTypePriority    = "file_type_priority"
	WeightDirectoryImportance = "directory_importance"
)

// Tuning knobs resolved through the same named-weight mechanism
const (
	WeightMinScore       = "min_score"
	WeightRecencyDecay   = "recency_decay_rate"
	WeightHighThreshold  = "high_priority_threshold"
	WeightMediumThresh   = "medium_priority_threshold"
	WeightFileRefPerHit  = "file_reference_per_hit"
	WeightConvTypeBonus  = "conversation_type_bonus"
	WeightMaxKeywords    = "max_context_keywords"
	WeightMaxContentLen  = "max_content_chars"
	WeightGitLookbackDay = "git_lookback_days"
)

var defaultWeights = map[string]float64{
	WeightKeywordMatch:     0.3,
	WeightFileReference:    0.25,
	WeightRecency:          0.2,
	WeightTechnicalContent: 0.1,
	WeightProblemSolving:   0.15,
	WeightArchitecture:     0.2,
	WeightDebugging:        0.25,

	WeightRecentModification:  0.3,
	WeightFileSizeOptimal:     0.15,
	WeightImportRelationship:  0.25,
	WeightConversationMention: 0.3,
	WeightGitActivity:         0.25,
	WeightFileTypePriority:    0.2,
	WeightDirectoryImportance: 0.15,

	WeightMinScore:       0.05,
	WeightRecencyDecay:   0.1,
	WeightHighThreshold:  0.8,
	WeightMediumThresh:   0.4,
	WeightFileRefPerHit:  0.25,
	WeightConvTypeBonus:  1.0,
	WeightMaxKeywords:    15,
	WeightMaxContentLen:  10000,
	WeightGitLookbackDay: 30,
}

var defaultExtensionPriorities = map[string]float64{
	".go": 1.0, ".py": 0.95, ".ts": 0.9, ".tsx": 0.9, ".js": 0.85,
	".jsx": 0.85, ".rs": 0.9, ".java": 0.8, ".kt": 0.8, ".rb": 0.75,
	".c": 0.7, ".cpp": 0.7, ".h": 0.6, ".sql": 0.6, ".sh": 0.5,
	".yaml": 0.45, ".yml": 0.45, ".toml": 0.45, ".json": 0.4,
	".md": 0.35, ".txt": 0.2, ".html": 0.3, ".css": 0.3,
}

var defaultDirectoryImportance = map[string]float64{
	"src": 0.9, "internal": 0.85, "lib": 0.8, "core": 0.8,
	"app": 0.7, "cmd": 0.7, "pkg": 0.7, "api": 0.6, "server": 0.6,
	"handlers": 0.55, "services": 0.55, "utils": 0.4, "scripts": 0.3,
	"test": 0.25, "tests": 0.25, "docs": 0.2, "examples": 0.2,
	"vendor": 0.05, "node_modules": 0.0, "dist": 0.05, "build": 0.05,
}

// weightsFile is the on-disk YAML shape
type weightsFile struct {
	Weights             map[string]float64 `yaml:"weights"`
	ExtensionPriorities map[string]float64 `yaml:"extension_priorities"`
	DirectoryImportance map[string]float64 `yaml:"directory_importance"`
}

// Weights supplies named numeric weights with per-key fallback to
// hardcoded defaults. Immutable for the duration of a scoring pass.
type Weights struct {
	values     map[string]float64
	extensions map[string]float64
	dirs       map[string]float64
}

// Default returns a Weights using only the hardcoded defaults
func Default() *Weights {
	return &Weights{}
}

// Load reads a weights YAML file and applies GANDALF_WEIGHT_* env
// overrides. A missing file is not an error; a malformed file is.
func Load(path string) (*Weights, error) {
	w := &Weights{}

	data, err := os.ReadFile(path)
	if err == nil {
		var wf weightsFile
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("failed to parse weights file %s: %w", path, err)
		}
		w.values = wf.Weights
		w.extensions = wf.ExtensionPriorities
		w.dirs = wf.DirectoryImportance
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read weights file %s: %w", path, err)
	}

	w.applyEnv()
	return w, nil
}

func (w *Weights) applyEnv() {
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "GANDALF_WEIGHT_") {
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, "GANDALF_WEIGHT_"))
		if w.values == nil {
			w.values = make(map[string]float64)
		}
		w.values[key] = f
	}
}

// Get returns the weight for name, falling back to the hardcoded default
func (w *Weights) Get(name string) float64 {
	if w.values != nil {
		if v, ok := w.values[name]; ok {
			return v
		}
	}
	return defaultWeights[name]
}

// ExtensionPriority returns the priority for a file extension (with dot)
func (w *Weights) ExtensionPriority(ext string) float64 {
	if w.extensions != nil {
		if v, ok := w.extensions[ext]; ok {
			return v
		}
	}
	return defaultExtensionPriorities[ext]
}

// DirectoryImportance returns the importance of a path segment
func (w *Weights) DirectoryImportance(segment string) (float64, bool) {
	if w.dirs != nil {
		if v, ok := w.dirs[segment]; ok {
			return v, true
		}
	}
	v, ok := defaultDirectoryImportance[segment]
	return v, ok
}

// Snapshot returns the effective weight values, defaults included,
// for reporting the parameters a ranking decision used.
func (w *Weights) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(defaultWeights))
	for name := range defaultWeights {
		out[name] = w.Get(name)
	}
	return out
}
