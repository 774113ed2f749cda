package assemble

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bluekornchips/gandalf/pkg/models"
)

func conv(id string, contentLen int) models.ScoredConversation {
	return models.ScoredConversation{
		Conversation: models.Conversation{
			ID:      id,
			Title:   "conversation " + id,
			Content: strings.Repeat("c", contentLen),
			Source:  models.SourceCursor,
		},
		RelevanceScore: 1.0,
	}
}

func TestOptimizeConversations_FullSetFits(t *testing.T) {
	t.Parallel()

	convs := []models.ScoredConversation{conv("a", 100), conv("b", 100)}
	got := OptimizeConversations(convs, 1<<20)
	if len(got) != 2 {
		t.Fatalf("len=%d, want 2", len(got))
	}
	// Untouched: content keeps its original length.
	if len(got[0].Content) != 100 {
		t.Fatalf("content len=%d, want 100", len(got[0].Content))
	}
}

func TestOptimizeConversations_NoBudget(t *testing.T) {
	t.Parallel()

	convs := []models.ScoredConversation{conv("a", 5000)}
	if got := OptimizeConversations(convs, 0); len(got) != 1 {
		t.Fatalf("len=%d, want full set when budget is unset", len(got))
	}
}

func TestOptimizeConversations_PrefixUnderBudget(t *testing.T) {
	t.Parallel()

	convs := []models.ScoredConversation{
		conv("a", 5000),
		conv("b", 5000),
		conv("c", 5000),
	}

	// Roomy enough for one slimmed entry but not all three.
	slimOne, err := json.Marshal([]models.ScoredConversation{slimConversation(convs[0])})
	if err != nil {
		t.Fatal(err)
	}
	budget := len(slimOne) + 10

	got := OptimizeConversations(convs, budget)
	if len(got) == 0 || len(got) == 3 {
		t.Fatalf("len=%d, want a strict non-empty prefix", len(got))
	}
	if got[0].ID != "a" {
		t.Fatalf("got[0].ID=%q, want rank order preserved", got[0].ID)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) > budget {
		t.Fatalf("serialized %d bytes, want <= budget %d", len(data), budget)
	}
}

func TestOptimizeConversations_SlimsEntries(t *testing.T) {
	t.Parallel()

	c := conv("a", slimContentCap*4)
	c.Messages = []models.Message{{Role: "user", Content: "hello"}}
	c.Analysis = &models.RelevanceAnalysis{}

	got := OptimizeConversations([]models.ScoredConversation{c, conv("b", slimContentCap*4)}, 4000)
	if len(got) == 0 {
		t.Fatal("want at least one slimmed entry")
	}
	if len(got[0].Content) > slimContentCap {
		t.Fatalf("content len=%d, want <= %d", len(got[0].Content), slimContentCap)
	}
	if got[0].Messages != nil || got[0].Analysis != nil {
		t.Fatal("want messages and analysis dropped when slimming")
	}
}

func TestSlimConversation_RuneBoundary(t *testing.T) {
	t.Parallel()

	c := conv("a", 0)
	c.Content = "a" + strings.Repeat("界", slimContentCap) // cap lands mid-rune
	c.Title = "a" + strings.Repeat("界", slimTitleCap)

	slim := slimConversation(c)
	if len(slim.Content) > slimContentCap {
		t.Fatalf("len(content)=%d, want <= %d", len(slim.Content), slimContentCap)
	}
	if !utf8.ValidString(slim.Content) {
		t.Fatalf("content truncation produced invalid UTF-8")
	}
	if !utf8.ValidString(slim.Title) {
		t.Fatalf("title truncation produced invalid UTF-8")
	}
}

func TestOptimizeConversations_FirstEntryTooBig(t *testing.T) {
	t.Parallel()

	convs := []models.ScoredConversation{conv("a", slimContentCap * 4)}
	got := OptimizeConversations(convs, 50)
	if len(got) != 0 {
		t.Fatalf("len=%d, want 0 when even a slimmed entry exceeds the budget", len(got))
	}
}

func TestRecommendSummaryMode(t *testing.T) {
	t.Parallel()

	if RecommendSummaryMode(100, 1000) {
		t.Fatal("under threshold, want false")
	}
	if !RecommendSummaryMode(2000, 1000) {
		t.Fatal("over threshold, want true")
	}
	if RecommendSummaryMode(2000, 0) {
		t.Fatal("disabled threshold, want false")
	}
}

func TestRecommendFastMode(t *testing.T) {
	t.Parallel()

	if RecommendFastMode(10, 10*time.Millisecond, time.Second) {
		t.Fatal("projected 100ms within 1s budget, want false")
	}
	if !RecommendFastMode(200, 10*time.Millisecond, time.Second) {
		t.Fatal("projected 2s over 1s budget, want true")
	}
	if RecommendFastMode(0, time.Second, time.Second) {
		t.Fatal("zero items, want false")
	}
}
