package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvDatabase, EnvTimezone, EnvMetrics} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultSuggestionTimer, cfg.SuggestionTimer)
	assert.Equal(t, DefaultNotificationTTL, cfg.NotificationTTL)
	assert.Equal(t, "state.db", filepath.Base(cfg.DatabasePath))
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://api.example.com
database: /tmp/sw.db
timezone: Europe/Berlin
suggestion_timer: 5m
notification_ttl: 2s
message_seed: 42
metrics_file: /tmp/sw.prom
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, "/tmp/sw.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Minute, cfg.SuggestionTimer)
	assert.Equal(t, 2*time.Second, cfg.NotificationTTL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout, "unset keys keep defaults")
	assert.Equal(t, uint64(42), cfg.MessageSeed)
	assert.Equal(t, "/tmp/sw.prom", cfg.MetricsFile)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://file.example.com\n"), 0o644))
	t.Setenv(EnvAPIURL, "http://env.example.com:8080")
	t.Setenv(EnvDatabase, "/tmp/env.db")
	t.Setenv(EnvMetrics, "/tmp/env.prom")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com:8080", cfg.APIURL)
	assert.Equal(t, "/tmp/env.db", cfg.DatabasePath)
	assert.Equal(t, "/tmp/env.prom", cfg.MetricsFile)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: ftp://x
timezone: Mars/Olympus
suggestion_timer: -1s
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
	assert.Contains(t, err.Error(), "Mars/Olympus")
	assert.Contains(t, err.Error(), "suggestion_timer")
}

func TestEnsureDBDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.db")
	require.NoError(t, EnsureDBDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
