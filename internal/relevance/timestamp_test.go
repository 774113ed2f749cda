package relevance

import (
	"testing"
	"time"

	"github.com/bluekornchips/gandalf/pkg/models"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  time.Time
		ok    bool
	}{
		{"unix seconds", float64(ref.Unix()), ref, true},
		{"unix milliseconds", float64(ref.UnixMilli()), ref, true},
		{"numeric string seconds", "1741953600", time.Unix(1741953600, 0), true},
		{"rfc3339 with zone", "2025-03-14T12:00:00Z", ref, true},
		{"iso without zone", "2025-03-14T12:00:00", ref, true},
		{"space separated", "2025-03-14 12:00:00", ref, true},
		{"date only", "2025-03-14", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"zero", float64(0), time.Time{}, false},
		{"garbage string", "not a time", time.Time{}, false},
		{"empty string", "", time.Time{}, false},
		{"unsupported type", []int{1}, time.Time{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTimestamp(tt.value)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%v) ok=%v, want %v", tt.value, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("ParseTimestamp(%v)=%v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestResolveTimestamp_FallbackChain(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	// created_at outranks updated_at in the chain.
	conv := models.Conversation{Metadata: map[string]any{
		"updated_at": float64(ref.Add(time.Hour).Unix()),
		"created_at": float64(ref.Unix()),
	}}
	got, ok := ResolveTimestamp(conv)
	if !ok || !got.Equal(ref) {
		t.Fatalf("ResolveTimestamp=%v/%v, want %v via created_at", got, ok, ref)
	}

	// An unparseable preferred field falls through to the next one.
	conv = models.Conversation{Metadata: map[string]any{
		"created_at": "garbage",
		"timestamp":  float64(ref.Unix()),
	}}
	got, ok = ResolveTimestamp(conv)
	if !ok || !got.Equal(ref) {
		t.Fatalf("ResolveTimestamp=%v/%v, want fallback to timestamp", got, ok)
	}

	// Nested metadata maps are searched too.
	conv = models.Conversation{Metadata: map[string]any{
		"metadata": map[string]any{"createdAt": float64(ref.UnixMilli())},
	}}
	got, ok = ResolveTimestamp(conv)
	if !ok || !got.Equal(ref) {
		t.Fatalf("ResolveTimestamp=%v/%v, want nested metadata hit", got, ok)
	}

	// Nothing resolvable.
	if _, ok := ResolveTimestamp(models.Conversation{Metadata: map[string]any{}}); ok {
		t.Fatal("ResolveTimestamp on empty metadata: ok=true, want false")
	}
}
