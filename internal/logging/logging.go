// Package logging builds the application's zerolog logger. The terminal is
// owned by the UI, so logs go to a file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New opens path for appending and returns a JSON logger at the given level.
// If the file cannot be opened a no-op logger is returned with the error.
func New(path, level string) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	log := zerolog.New(f).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("app", "hackers").
		Logger()
	return log, f, nil
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
