package source

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/pkg/models"
)

// Windsurf stores chat state under these ItemTable keys
var windsurfKeys = []string{
	"chat.chatSessionStore",
	"windsurf.chatSessionStore",
	"chat_data",
	"session_data",
}

// WindsurfSource reads Windsurf's workspace state database. Values
// under the known keys may be a single session object or a map of
// session id to session data.
type WindsurfSource struct {
	dbPath string
	log    zerolog.Logger
}

// NewWindsurf creates a source over a Windsurf state.vscdb file
func NewWindsurf(dbPath string, log zerolog.Logger) *WindsurfSource {
	return &WindsurfSource{dbPath: dbPath, log: log}
}

func (s *WindsurfSource) Name() models.Source { return models.SourceWindsurf }

func (s *WindsurfSource) Available() bool {
	_, err := os.Stat(s.dbPath)
	return err == nil
}

func (s *WindsurfSource) Conversations(ctx context.Context) ([]models.RawRecord, error) {
	if !s.Available() {
		return nil, nil
	}
	db, err := openReadOnly(s.dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var records []models.RawRecord
	for _, key := range windsurfKeys {
		raw, err := itemTableValue(ctx, db, key)
		if err != nil {
			return nil, err
		}
		switch data := decodeAny(raw).(type) {
		case map[string]any:
			// A sessions map fans out into one record per session;
			// anything else is a single record.
			if sessions, ok := data["sessions"].(map[string]any); ok {
				for id, session := range sessions {
					record := map[string]any{"id": id, "session_data": session}
					records = append(records, models.RawRecord{
						Source: models.SourceWindsurf,
						Data:   record,
					})
				}
				continue
			}
			records = append(records, models.RawRecord{Source: models.SourceWindsurf, Data: data})
		case []any:
			for _, item := range data {
				records = append(records, models.RawRecord{Source: models.SourceWindsurf, Data: item})
			}
		}
	}
	return records, nil
}
