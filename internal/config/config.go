package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "HACKERS_"

type Config struct {
	CacheDir       string
	DBPath         string
	SessionPath    string
	LogPath        string
	LogLevel       string
	HNBaseURL      string
	APIBaseURL     string
	RequestTimeout time.Duration
	StoryListTTL   time.Duration
	ItemTTL        time.Duration
	CommentTTL     time.Duration
	UserTTL        time.Duration
	CacheMaxAge    time.Duration
	FetchPageSize  int
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "hackers")
	return Config{
		CacheDir:       cacheDir,
		DBPath:         filepath.Join(cacheDir, "cache.db"),
		SessionPath:    filepath.Join(cacheDir, "session.json"),
		LogPath:        filepath.Join(cacheDir, "debug.log"),
		LogLevel:       "info",
		HNBaseURL:      "https://news.ycombinator.com",
		APIBaseURL:     "https://hacker-news.firebaseio.com/v0",
		RequestTimeout: 10 * time.Second,
		StoryListTTL:   60 * time.Second,
		ItemTTL:        5 * time.Minute,
		CommentTTL:     10 * time.Minute,
		UserTTL:        1 * time.Hour,
		CacheMaxAge:    7 * 24 * time.Hour,
		FetchPageSize:  30,
	}
}

// Load starts from Default, applies <cache dir>/.env if present, then
// HACKERS_* environment variables, and validates the result. Variables
// already set in the environment win over the .env file.
func Load() (Config, error) {
	cfg := Default()
	if dir := os.Getenv(envPrefix + "CACHE_DIR"); dir != "" {
		cfg.setCacheDir(dir)
	}

	envFile := filepath.Join(cfg.CacheDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("reading %s: %w", envFile, err)
	}

	var errs []error
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HNBaseURL = strings.TrimRight(getEnv("HN_URL", cfg.HNBaseURL), "/")
	cfg.APIBaseURL = strings.TrimRight(getEnv("API_URL", cfg.APIBaseURL), "/")
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout, &errs)
	cfg.StoryListTTL = getEnvDuration("STORY_LIST_TTL", cfg.StoryListTTL, &errs)
	cfg.ItemTTL = getEnvDuration("ITEM_TTL", cfg.ItemTTL, &errs)
	cfg.CommentTTL = getEnvDuration("COMMENT_TTL", cfg.CommentTTL, &errs)
	cfg.UserTTL = getEnvDuration("USER_TTL", cfg.UserTTL, &errs)
	cfg.CacheMaxAge = getEnvDuration("CACHE_MAX_AGE", cfg.CacheMaxAge, &errs)
	cfg.FetchPageSize = getEnvInt("PAGE_SIZE", cfg.FetchPageSize, &errs)
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("cache dir is required")
	}
	for name, raw := range map[string]string{"HN_URL": c.HNBaseURL, "API_URL": c.APIBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s%s must be an absolute URL, got %q", envPrefix, name, raw)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.FetchPageSize <= 0 {
		return errors.New("page size must be positive")
	}
	return nil
}

func (c *Config) setCacheDir(dir string) {
	c.CacheDir = dir
	c.DBPath = filepath.Join(dir, "cache.db")
	c.SessionPath = filepath.Join(dir, "session.json")
	c.LogPath = filepath.Join(dir, "debug.log")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return fallback
	}
	return d
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return fallback
	}
	return n
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
