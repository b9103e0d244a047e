// Package logging builds the zerolog logger shared by the CLI and the API.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LevelEnv overrides the log level, e.g. NOHARM_LOG_LEVEL=debug.
const LevelEnv = "NOHARM_LOG_LEVEL"

// Setup returns a logger writing to stderr. format "text" gives the console
// writer, anything else one JSON object per line.
func Setup(format string) zerolog.Logger {
	return New(os.Stderr, format, os.Getenv(LevelEnv))
}

// New builds a logger on w. An empty or unknown level means info.
func New(w io.Writer, format, level string) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("app", "noharmcheck").Logger()
}
