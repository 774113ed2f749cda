package relevance

import (
	"strconv"
	"strings"
	"time"

	"github.com/bluekornchips/gandalf/pkg/models"
)

// unixMillisThreshold disambiguates unix seconds from milliseconds:
// values above it are taken as milliseconds.
const unixMillisThreshold = 1e10

// timestampFields is the prioritized fallback chain of metadata keys
var timestampFields = []string{
	"created_at", "createdAt", "timestamp",
	"updated_at", "updatedAt", "lastUpdatedAt",
}

// ResolveTimestamp walks the conversation metadata for a usable
// timestamp, trying each known field name and encoding in turn.
// A nested metadata map is searched with the same chain.
func ResolveTimestamp(conv models.Conversation) (time.Time, bool) {
	if t, ok := fromMap(conv.Metadata); ok {
		return t, true
	}
	if nested, ok := conv.Metadata["metadata"].(map[string]any); ok {
		return fromMap(nested)
	}
	return time.Time{}, false
}

func fromMap(m map[string]any) (time.Time, bool) {
	for _, field := range timestampFields {
		v, ok := m[field]
		if !ok {
			continue
		}
		if t, ok := ParseTimestamp(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimestamp decodes a single timestamp value in any of the
// encodings the chat stores use: unix seconds or milliseconds as
// numbers or numeric strings, and common ISO-8601 layouts.
func ParseTimestamp(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case float64:
		return fromUnix(ts)
	case int64:
		return fromUnix(float64(ts))
	case int:
		return fromUnix(float64(ts))
	case string:
		return fromString(ts)
	case time.Time:
		return ts, true
	}
	return time.Time{}, false
}

func fromUnix(ts float64) (time.Time, bool) {
	if ts <= 0 {
		return time.Time{}, false
	}
	if ts > unixMillisThreshold {
		return time.UnixMilli(int64(ts)), true
	}
	return time.Unix(int64(ts), 0), true
}

func fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Numeric strings carry unix seconds or milliseconds.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnix(f)
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
