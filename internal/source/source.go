package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bluekornchips/gandalf/pkg/models"
)

// Source yields raw conversation records from one tool's chat-history
// store. History is externally produced and read-only; a source never
// writes.
type Source interface {
	Name() models.Source
	Available() bool
	Conversations(ctx context.Context) ([]models.RawRecord, error)
}

// openReadOnly opens a SQLite database without taking write locks.
// The busy timeout keeps us from failing when the IDE holds the file.
func openReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

// itemTableValue fetches one value from a VSCode-style ItemTable
// key/value store. Missing keys are not an error.
func itemTableValue(ctx context.Context, db *sql.DB, key string) (json.RawMessage, error) {
	row := db.QueryRowContext(ctx, "SELECT value FROM ItemTable WHERE key = ?", key)

	var value []byte
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

// decodeAny unmarshals a JSON blob into the loose any-typed shape the
// normalizer consumes. Malformed JSON yields nil, not an error: a bad
// blob is no data, not a failure.
func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
