package models

import (
	"time"
)

// Source identifies which tool produced a conversation record
type Source string

const (
	SourceCursor     Source = "cursor"
	SourceClaudeCode Source = "claude-code"
	SourceWindsurf   Source = "windsurf"
	SourceUnknown    Source = "unknown"
)

// DefaultTitle is used when a record carries no usable title
const DefaultTitle = "Untitled Conversation"

// Message is a single role/content exchange inside a conversation
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// RawRecord is an opaque, source-specific conversation blob.
// No shape is guaranteed; all fields are optional.
type RawRecord struct {
	Source Source `json:"source"`
	Data   any    `json:"data"`
}

// Conversation is the canonical normalized record every source maps into
type Conversation struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Messages []Message      `json:"messages,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Source   Source         `json:"source"`
}

// ConversationType categorizes what a conversation is about
type ConversationType string

const (
	TypeArchitecture   ConversationType = "architecture"
	TypeDebugging      ConversationType = "debugging"
	TypeProblemSolving ConversationType = "problem_solving"
	TypeTechnical      ConversationType = "technical"
	TypeCodeDiscussion ConversationType = "code_discussion"
	TypeGeneral        ConversationType = "general"
)

// RelevanceAnalysis breaks a composite relevance score into its components
type RelevanceAnalysis struct {
	KeywordScore     float64          `json:"keywordScore"`
	RecencyScore     float64          `json:"recencyScore"`
	FileScore        float64          `json:"fileScore"`
	PatternScore     float64          `json:"patternScore"`
	DetectedKeywords []string         `json:"detectedKeywords,omitempty"`
	FileReferences   []string         `json:"fileReferences,omitempty"`
	ConversationType ConversationType `json:"conversationType"`
	RelevanceScore   float64          `json:"relevanceScore"`
}

// ScoredConversation pairs a normalized conversation with its analysis
type ScoredConversation struct {
	Conversation
	RelevanceScore float64            `json:"relevanceScore"`
	Analysis       *RelevanceAnalysis `json:"analysis,omitempty"`
}

// LightConversation is the compact listing form of a scored conversation
type LightConversation struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Source         Source  `json:"source"`
	Timestamp      string  `json:"timestamp,omitempty"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Light strips a scored conversation down to its listing fields
func (c ScoredConversation) Light() LightConversation {
	lc := LightConversation{
		ID:             c.ID,
		Title:          c.Title,
		Source:         c.Source,
		RelevanceScore: c.RelevanceScore,
	}
	for _, key := range []string{"created_at", "timestamp", "updated_at"} {
		if v, ok := c.Metadata[key]; ok {
			if s, ok := v.(string); ok {
				lc.Timestamp = s
				break
			}
		}
	}
	return lc
}

// ThreadEntry is a raw prompt or generation row from a split-table source
type ThreadEntry map[string]any

// Thread pairs a prompt entry with its matching generation entry.
// At least one side is always non-nil; Unpaired is true iff exactly
// one side is nil.
type Thread struct {
	ID         string      `json:"id"`
	Prompt     ThreadEntry `json:"prompt,omitempty"`
	Generation ThreadEntry `json:"generation,omitempty"`
	Timestamp  *time.Time  `json:"timestamp,omitempty"`
	Unpaired   bool        `json:"unpaired"`
}

// ScoredFile is a project file with its computed relevance score
type ScoredFile struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// RankedFiles buckets scored files into priority tiers
type RankedFiles struct {
	HighPriorityFiles   []ScoredFile   `json:"high_priority_files"`
	MediumPriorityFiles []ScoredFile   `json:"medium_priority_files"`
	LowPriorityFiles    []ScoredFile   `json:"low_priority_files"`
	TopFiles            []string       `json:"top_files"`
	Parameters          map[string]any `json:"parameters,omitempty"`
}
