package assemble

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/bluekornchips/gandalf/pkg/models"
)

const (
	// slimContentCap truncates conversation content when shrinking
	// a result set to fit a byte budget
	slimContentCap = 1500

	// slimTitleCap truncates titles in the same pass
	slimTitleCap = 120
)

// OptimizeConversations bounds an already-ranked result set to a
// serialized-size budget. If the full set fits, it is returned
// untouched. Otherwise entries are slimmed (content truncated,
// verbose analysis dropped) and accumulated in rank order, stopping
// before the first entry that would cross the budget. Entries are
// never partially serialized.
func OptimizeConversations(convs []models.ScoredConversation, targetBytes int) []models.ScoredConversation {
	if targetBytes <= 0 || len(convs) == 0 {
		return convs
	}

	if full, err := json.Marshal(convs); err == nil && len(full) <= targetBytes {
		return convs
	}

	out := make([]models.ScoredConversation, 0, len(convs))
	total := 2 // enclosing []
	for _, conv := range convs {
		slim := slimConversation(conv)
		data, err := json.Marshal(slim)
		if err != nil {
			continue
		}
		cost := len(data)
		if len(out) > 0 {
			cost++ // separating comma
		}
		if total+cost > targetBytes {
			break
		}
		total += cost
		out = append(out, slim)
	}
	return out
}

// slimConversation drops the verbose fields and truncates long strings
func slimConversation(conv models.ScoredConversation) models.ScoredConversation {
	slim := conv
	slim.Messages = nil
	slim.Analysis = nil
	slim.Content = truncate(slim.Content, slimContentCap)
	slim.Title = truncate(slim.Title, slimTitleCap)
	return slim
}

// truncate cuts s to at most max bytes on a rune boundary, keeping the
// slimmed JSON valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// RecommendSummaryMode reports whether a response of the given size
// should switch to cheaper summary formatting.
func RecommendSummaryMode(responseBytes, thresholdBytes int) bool {
	return thresholdBytes > 0 && responseBytes > thresholdBytes
}

// RecommendFastMode projects total processing time from a per-item
// model and reports whether it would blow the wall-clock budget.
func RecommendFastMode(items int, perItem, budget time.Duration) bool {
	if budget <= 0 || items <= 0 {
		return false
	}
	return time.Duration(items)*perItem > budget
}
