package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/pkg/models"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    models.ConversationType
	}{
		{
			name:    "debugging vocabulary",
			content: "I need to debug this error and fix the crash",
			want:    models.TypeDebugging,
		},
		{
			name:    "architecture vocabulary",
			content: "the system architecture needs a new design pattern for this component and module interface",
			want:    models.TypeArchitecture,
		},
		{
			name:    "problem solving phrasing",
			content: "how do I solve this? what's the best way to implement the solution",
			want:    models.TypeProblemSolving,
		},
		{
			name:    "no category matches",
			content: "lovely weather we are having today",
			want:    models.TypeGeneral,
		},
		{
			name:    "empty content",
			content: "",
			want:    models.TypeGeneral,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.content, config.Default())
			if got.Type != tt.want {
				t.Fatalf("Classify(%q).Type=%s, want %s", tt.content, got.Type, tt.want)
			}
		})
	}
}

func TestClassify_Scores(t *testing.T) {
	t.Parallel()

	got := Classify("debug the error, fix the bug", config.Default())
	if got.Type != models.TypeDebugging {
		t.Fatalf("Type=%s, want debugging", got.Type)
	}
	if got.PatternScore <= 0 {
		t.Fatalf("PatternScore=%v, want > 0", got.PatternScore)
	}
	if got.TypeBonus != 0.25 {
		t.Fatalf("TypeBonus=%v, want 0.25", got.TypeBonus)
	}

	general := Classify("nothing relevant here at all", config.Default())
	if general.PatternScore != 0 || general.TypeBonus != 0 {
		t.Fatalf("general scores=%v/%v, want 0/0", general.PatternScore, general.TypeBonus)
	}
}

// Category weights come from the provider, so overriding one in the
// weights file changes the pattern score proportionally.
func TestClassify_CategoryWeightOverride(t *testing.T) {
	t.Parallel()

	content := "debug the error and fix the crash"

	base := Classify(content, config.Default())
	if base.Type != models.TypeDebugging {
		t.Fatalf("Type=%s, want debugging", base.Type)
	}

	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("weights:\n  debugging: 2.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	overridden, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	boosted := Classify(content, overridden)
	if boosted.PatternScore <= base.PatternScore {
		t.Fatalf("PatternScore=%v with debugging=2.5, want > default %v",
			boosted.PatternScore, base.PatternScore)
	}

	// Match count is unchanged, so the ratio is exactly the weight ratio.
	matches := base.PatternScore / config.Default().Get(config.WeightDebugging)
	if want := matches * 2.5; boosted.PatternScore != want {
		t.Fatalf("PatternScore=%v, want %v", boosted.PatternScore, want)
	}
}

func TestClassify_NilWeightsFallsBack(t *testing.T) {
	t.Parallel()

	got := Classify("debug the error", nil)
	if got.Type != models.TypeDebugging {
		t.Fatalf("Type=%s, want debugging", got.Type)
	}
	if got.PatternScore != 0 {
		t.Fatalf("PatternScore=%v, want 0 without a provider for a named weight", got.PatternScore)
	}
}

// Equal match counts resolve to whichever group is registered first,
// so the outcome is stable across runs.
func TestClassify_TieBreakIsDeterministic(t *testing.T) {
	t.Parallel()

	// One keyword hit in architecture ("design") and one in debugging
	// ("error"): architecture is registered first and wins the tie.
	content := "a design with an error"
	want := Classify(content, config.Default()).Type
	for i := 0; i < 50; i++ {
		if got := Classify(content, config.Default()).Type; got != want {
			t.Fatalf("run %d: Classify flapped from %s to %s", i, want, got)
		}
	}
	if want != models.TypeArchitecture {
		t.Fatalf("tie resolved to %s, want architecture (first registered)", want)
	}
}
