package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/pkg/models"
)

// DefaultMaxChars caps the extracted content of one conversation
const DefaultMaxChars = 10000

// variantFunc extracts title/content/messages for one source shape.
// It reports whether it recognized the shape at all.
type variantFunc func(n *Normalizer, m map[string]any, c *models.Conversation) bool

// variants maps a source tag to its record-shape handler. Unknown
// sources fall through to the generic extraction chain.
var variants = map[models.Source]variantFunc{
	models.SourceCursor:     (*Normalizer).fromComposerSteps,
	models.SourceClaudeCode: (*Normalizer).fromMessages,
	models.SourceWindsurf:   (*Normalizer).fromChatData,
}

// Normalizer converts heterogeneous raw records into the canonical
// conversation shape. It never fails: unrecognized input produces a
// thin but usable record.
type Normalizer struct {
	maxChars int
	log      zerolog.Logger
}

// New creates a normalizer with the given content cap (0 = default)
func New(maxChars int, log zerolog.Logger) *Normalizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Normalizer{maxChars: maxChars, log: log}
}

// Normalize converts a raw record into a canonical conversation
func (n *Normalizer) Normalize(raw models.RawRecord) models.Conversation {
	conv := models.Conversation{
		Title:    models.DefaultTitle,
		Metadata: map[string]any{},
		Source:   raw.Source,
	}
	if conv.Source == "" {
		conv.Source = models.SourceUnknown
	}

	switch data := raw.Data.(type) {
	case map[string]any:
		n.normalizeMap(data, &conv)
	case []any:
		conv.Messages = n.extractMessages(data)
		conv.Content = n.joinMessages(conv.Messages)
		conv.Metadata["message_count"] = len(conv.Messages)
	case string:
		conv.Content = truncate(data, n.maxChars)
	case nil:
		// Absent data still yields a usable empty record.
	default:
		n.log.Debug().Type("type", data).Msg("unsupported raw record shape")
	}

	return conv
}

func (n *Normalizer) normalizeMap(m map[string]any, conv *models.Conversation) {
	if title := stringField(m, "title", "name"); title != "" && title != "Untitled" {
		conv.Title = title
	}

	if fn, ok := variants[conv.Source]; ok && fn(n, m, conv) {
		n.extractMetadata(m, conv)
		return
	}

	// Generic fallback chain: messages, then composerSteps, then a
	// flat content string.
	if !n.fromMessages(m, conv) && !n.fromComposerSteps(m, conv) {
		if content, ok := m["content"].(string); ok {
			conv.Content = truncate(content, n.maxChars)
		}
	}
	n.extractMetadata(m, conv)
}

// fromMessages handles records with a messages array of role/content
// dicts or bare strings (Claude Code shape).
func (n *Normalizer) fromMessages(m map[string]any, conv *models.Conversation) bool {
	raw, ok := m["messages"].([]any)
	if !ok {
		return false
	}
	conv.Messages = n.extractMessages(raw)
	conv.Content = n.joinMessages(conv.Messages)
	conv.Metadata["message_count"] = len(raw)
	return true
}

// fromComposerSteps handles Cursor composer records whose steps carry
// either a content or a text field.
func (n *Normalizer) fromComposerSteps(m map[string]any, conv *models.Conversation) bool {
	raw, ok := m["composerSteps"].([]any)
	if !ok {
		return false
	}

	var parts []string
	budget := n.maxChars
	for _, item := range raw {
		step, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := stringField(step, "content", "text")
		if text == "" {
			continue
		}
		if !appendWithin(&parts, &budget, text) {
			break
		}
	}
	conv.Content = strings.Join(parts, "\n")
	conv.Metadata["step_count"] = len(raw)
	return true
}

// fromChatData handles Windsurf records keyed by chat_data or
// session_data, whose values may be nested maps or flat strings.
func (n *Normalizer) fromChatData(m map[string]any, conv *models.Conversation) bool {
	for _, key := range []string{"chat_data", "session_data"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch data := v.(type) {
		case string:
			conv.Content = truncate(data, n.maxChars)
		case map[string]any:
			if !n.fromMessages(data, conv) {
				if content, ok := data["content"].(string); ok {
					conv.Content = truncate(content, n.maxChars)
				}
			}
		}
		conv.Metadata["data_key"] = key
		return true
	}
	return false
}

func (n *Normalizer) extractMessages(raw []any) []models.Message {
	var messages []models.Message
	for _, item := range raw {
		switch msg := item.(type) {
		case map[string]any:
			role, _ := msg["role"].(string)
			if role == "" {
				role = "user"
			}
			messages = append(messages, models.Message{
				Role:    role,
				Content: contentText(msg["content"]),
			})
		case string:
			messages = append(messages, models.Message{Role: "user", Content: msg})
		}
	}
	return messages
}

// joinMessages concatenates message contents under the running char
// budget, hard-truncating the piece that crosses it.
func (n *Normalizer) joinMessages(messages []models.Message) string {
	var parts []string
	budget := n.maxChars
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		if !appendWithin(&parts, &budget, msg.Content) {
			break
		}
	}
	return strings.Join(parts, "\n")
}

// contentText flattens a message content value: plain string, or a
// list of content blocks each carrying a text field.
func contentText(v any) string {
	switch content := v.(type) {
	case string:
		return content
	case []any:
		var parts []string
		for _, block := range content {
			if m, ok := block.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					parts = append(parts, text)
				}
			} else if s, ok := block.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// metadataFields is the best-effort scan list; absent keys are skipped
var metadataFields = []string{
	"id", "name", "created_at", "createdAt", "updated_at", "updatedAt",
	"timestamp", "sessionId", "workspaceId", "composerId", "lastUpdatedAt",
}

func (n *Normalizer) extractMetadata(m map[string]any, conv *models.Conversation) {
	for _, field := range metadataFields {
		if v, ok := m[field]; ok {
			conv.Metadata[field] = v
		}
	}
	if id := stringField(m, "id", "composerId", "sessionId"); id != "" {
		conv.ID = id
	}
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// appendWithin appends text to parts if budget allows, hard-truncating
// the piece that would cross it. Reports whether budget remains.
func appendWithin(parts *[]string, budget *int, text string) bool {
	if *budget <= 0 {
		return false
	}
	if len(text) >= *budget {
		*parts = append(*parts, truncate(text, *budget))
		*budget = 0
		return false
	}
	*parts = append(*parts, text)
	*budget -= len(text) + 1 // joining newline counts against the cap
	return true
}

// truncate cuts s to at most maxChars bytes, backing off to the
// nearest rune boundary so the result stays valid UTF-8.
func truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
