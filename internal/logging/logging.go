package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures the global zerolog logger. Output always goes to
// stderr so MCP mode can keep stdout clean for JSON-RPC traffic.
func Setup() zerolog.Logger {
	return SetupWithWriter(os.Stderr)
}

// SetupWithWriter configures a logger against a specific writer
func SetupWithWriter(w io.Writer) zerolog.Logger {
	level := parseLevel(os.Getenv("GANDALF_LOG_LEVEL"))

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
