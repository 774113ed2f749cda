package source

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/pkg/models"
)

// Cursor workspace storage keys inside state.vscdb's ItemTable
const (
	cursorComposerKey    = "composer.composerData"
	cursorPromptsKey     = "aiService.prompts"
	cursorGenerationsKey = "aiService.generations"
)

// CursorSource reads Cursor's workspace state database. Composer
// conversations come back as raw records; prompts and generations are
// stored in separate arrays and exposed for the threader to pair up.
type CursorSource struct {
	dbPath string
	log    zerolog.Logger
}

// NewCursor creates a source over a Cursor state.vscdb file
func NewCursor(dbPath string, log zerolog.Logger) *CursorSource {
	return &CursorSource{dbPath: dbPath, log: log}
}

func (s *CursorSource) Name() models.Source { return models.SourceCursor }

func (s *CursorSource) Available() bool {
	_, err := os.Stat(s.dbPath)
	return err == nil
}

// Conversations returns the composer records. A missing database or
// key yields an empty slice.
func (s *CursorSource) Conversations(ctx context.Context) ([]models.RawRecord, error) {
	if !s.Available() {
		return nil, nil
	}
	db, err := openReadOnly(s.dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	raw, err := itemTableValue(ctx, db, cursorComposerKey)
	if err != nil {
		return nil, err
	}

	var records []models.RawRecord

	// composerData wraps the conversations in an allComposers array.
	if data, ok := decodeAny(raw).(map[string]any); ok {
		if composers, ok := data["allComposers"].([]any); ok {
			for _, c := range composers {
				records = append(records, models.RawRecord{
					Source: models.SourceCursor,
					Data:   c,
				})
			}
		}
	}

	return records, nil
}

// ThreadEntries returns the raw prompt and generation arrays, in
// stored (chronological) order, for time-proximity threading.
func (s *CursorSource) ThreadEntries(ctx context.Context) (prompts, generations []models.ThreadEntry, err error) {
	if !s.Available() {
		return nil, nil, nil
	}
	db, err := openReadOnly(s.dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	prompts, err = entries(ctx, db, cursorPromptsKey)
	if err != nil {
		return nil, nil, err
	}
	generations, err = entries(ctx, db, cursorGenerationsKey)
	if err != nil {
		return nil, nil, err
	}
	return prompts, generations, nil
}

func entries(ctx context.Context, db *sql.DB, key string) ([]models.ThreadEntry, error) {
	raw, err := itemTableValue(ctx, db, key)
	if err != nil {
		return nil, err
	}

	items, ok := decodeAny(raw).([]any)
	if !ok {
		return nil, nil
	}

	out := make([]models.ThreadEntry, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, models.ThreadEntry(m))
		}
	}
	return out, nil
}
