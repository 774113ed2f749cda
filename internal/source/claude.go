package source

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/pkg/models"
)

// ClaudeCodeSource reads Claude Code session files: one JSONL file per
// session under the projects directory, one message per line.
type ClaudeCodeSource struct {
	projectsDir string
	log         zerolog.Logger
}

// NewClaudeCode creates a source over a Claude Code projects directory
// (typically ~/.claude/projects/<munged-project-path>).
func NewClaudeCode(projectsDir string, log zerolog.Logger) *ClaudeCodeSource {
	return &ClaudeCodeSource{projectsDir: projectsDir, log: log}
}

func (s *ClaudeCodeSource) Name() models.Source { return models.SourceClaudeCode }

func (s *ClaudeCodeSource) Available() bool {
	info, err := os.Stat(s.projectsDir)
	return err == nil && info.IsDir()
}

// Conversations aggregates each session file into one raw record with
// a messages array. Unreadable files and malformed lines are skipped.
func (s *ClaudeCodeSource) Conversations(ctx context.Context) ([]models.RawRecord, error) {
	if !s.Available() {
		return nil, nil
	}
	entries, err := os.ReadDir(s.projectsDir)
	if err != nil {
		return nil, err
	}

	var records []models.RawRecord
	for _, entry := range entries {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}

		record, ok := s.readSession(filepath.Join(s.projectsDir, entry.Name()))
		if ok {
			records = append(records, models.RawRecord{
				Source: models.SourceClaudeCode,
				Data:   record,
			})
		}
	}
	return records, nil
}

func (s *ClaudeCodeSource) readSession(path string) (map[string]any, bool) {
	f, err := os.Open(path)
	if err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable session file")
		return nil, false
	}
	defer f.Close()

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	record := map[string]any{"id": sessionID, "sessionId": sessionID}

	var messages []any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		// Session lines wrap the message; some carry metadata instead.
		if msg, ok := entry["message"].(map[string]any); ok {
			messages = append(messages, msg)
		} else if _, ok := entry["role"]; ok {
			messages = append(messages, entry)
		}
		if ts, ok := entry["timestamp"]; ok {
			record["timestamp"] = ts
		}
		if summary, ok := entry["summary"].(string); ok && summary != "" {
			record["title"] = summary
		}
	}

	if len(messages) == 0 {
		return nil, false
	}
	record["messages"] = messages
	return record, true
}
