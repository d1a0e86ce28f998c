// Package config loads client configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDirName = "sugarwarrior"
	dbFileName = "state.db"
)

// Environment variables that override file values.
const (
	EnvAPIURL   = "SUGARWARRIOR_API_URL"
	EnvDatabase = "SUGARWARRIOR_DB"
	EnvTimezone = "SUGARWARRIOR_TZ"
	EnvMetrics  = "SUGARWARRIOR_METRICS_FILE"
)

// Defaults.
const (
	DefaultAPIURL          = "http://localhost:5000"
	DefaultSuggestionTimer = 600 * time.Second
	DefaultNotificationTTL = 4 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
)

// Config holds all configuration for the sugarwarrior client.
type Config struct {
	APIURL          string        `yaml:"api_url"`
	DatabasePath    string        `yaml:"database"`
	Timezone        string        `yaml:"timezone"`
	SuggestionTimer time.Duration `yaml:"suggestion_timer"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MessageSeed     uint64        `yaml:"message_seed"`

	// MetricsFile, when set, receives the session counters in Prometheus
	// text format each time a command exits.
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	dbPath, err := DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return &Config{
		APIURL:          DefaultAPIURL,
		DatabasePath:    dbPath,
		SuggestionTimer: DefaultSuggestionTimer,
		NotificationTTL: DefaultNotificationTTL,
		RequestTimeout:  DefaultRequestTimeout,
	}, nil
}

// Load reads configuration from path (if non-empty), then applies
// environment overrides and validates the result. A missing file at an
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.APIURL = getEnv(EnvAPIURL, cfg.APIURL)
	cfg.DatabasePath = getEnv(EnvDatabase, cfg.DatabasePath)
	cfg.Timezone = getEnv(EnvTimezone, cfg.Timezone)
	cfg.MetricsFile = getEnv(EnvMetrics, cfg.MetricsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url %q must be an http(s) URL", c.APIURL))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path must be set"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.SuggestionTimer <= 0 {
		errs = append(errs, errors.New("suggestion_timer must be positive"))
	}
	if c.NotificationTTL <= 0 {
		errs = append(errs, errors.New("notification_ttl must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolves Timezone. Empty means the machine's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultDBPath returns the per-user state database path.
func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// EnsureDBDir creates the directory holding path.
func EnsureDBDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
