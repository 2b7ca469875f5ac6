package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	log, closer, err := New(path, "info")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Debug().Msg("dropped")
	log.Info().Str("component", "test").Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "hello" || entry["component"] != "test" || entry["app"] != "hackers" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewFallsBackToNop(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("writing blocker: %v", err)
	}

	log, closer, err := New(filepath.Join(blocker, "debug.log"), "debug")
	if err == nil {
		t.Fatal("expected error when log dir is a file")
	}
	if log.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected nop logger, got level %v", log.GetLevel())
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"warn":     zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"loud":     zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
