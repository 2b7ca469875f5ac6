package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() returned error: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HACKERS_CACHE_DIR", dir)
	t.Setenv("HACKERS_LOG_LEVEL", "debug")
	t.Setenv("HACKERS_HN_URL", "http://localhost:8080/")
	t.Setenv("HACKERS_COMMENT_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "cache.db") || cfg.SessionPath != filepath.Join(dir, "session.json") {
		t.Fatalf("paths not derived from cache dir: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %q", cfg.LogLevel)
	}
	if cfg.HNBaseURL != "http://localhost:8080" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.HNBaseURL)
	}
	if cfg.CommentTTL != 90*time.Second {
		t.Fatalf("expected 90s comment ttl, got %v", cfg.CommentTTL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HACKERS_CACHE_DIR", dir)
	t.Setenv("HACKERS_PAGE_SIZE", "50")
	t.Cleanup(func() { os.Unsetenv("HACKERS_ITEM_TTL") })

	env := "HACKERS_ITEM_TTL=2m\nHACKERS_PAGE_SIZE=10\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ItemTTL != 2*time.Minute {
		t.Fatalf("expected item ttl from .env, got %v", cfg.ItemTTL)
	}
	if cfg.FetchPageSize != 50 {
		t.Fatalf("environment should win over .env, got page size %d", cfg.FetchPageSize)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"HACKERS_ITEM_TTL", "soon", "HACKERS_ITEM_TTL"},
		{"HACKERS_PAGE_SIZE", "lots", "HACKERS_PAGE_SIZE"},
		{"HACKERS_PAGE_SIZE", "0", "page size"},
		{"HACKERS_API_URL", "not a url", "HACKERS_API_URL"},
		{"HACKERS_LOG_LEVEL", "chatty", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("HACKERS_CACHE_DIR", t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
