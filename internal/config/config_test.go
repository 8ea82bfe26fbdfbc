package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "data/mytasks.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.Weather.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Weather.RefreshInterval)
	assert.Empty(t, cfg.Weather.APIKey)
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mytasks.yml")
	body := `
server:
  addr: ":9090"
  shutdown_timeout: 5s
storage:
  data_dir: /var/lib/mytasks
auth:
  session_ttl: 48h
  secure_cookie: true
weather:
  api_key: file-key
  refresh_interval: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/var/lib/mytasks", cfg.Storage.DataDir)
	assert.Equal(t, 48*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.Auth.SecureCookie)
	assert.Equal(t, "file-key", cfg.Weather.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Weather.RefreshInterval)

	// Untouched sections still get defaults.
	assert.Equal(t, "data/mytasks.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.Weather.BaseURL)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mytasks.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mytasks.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("MYTASKS_ADDR", ":7070")
	t.Setenv("MYTASKS_DATA_DIR", "/tmp/mytasks-data")
	t.Setenv("MYTASKS_SQLITE_PATH", "/tmp/mytasks.db")
	t.Setenv("MYTASKS_WEATHER_API_KEY", "env-key")
	t.Setenv("MYTASKS_WEATHER_REFRESH", "1m")
	t.Setenv("MYTASKS_SESSION_TTL", "1h")
	t.Setenv("MYTASKS_COOKIE_SECURE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/mytasks-data", cfg.Storage.DataDir)
	assert.Equal(t, "/tmp/mytasks.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "env-key", cfg.Weather.APIKey)
	assert.Equal(t, time.Minute, cfg.Weather.RefreshInterval)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.Auth.SecureCookie)
}

func TestLoad_BadDurationEnvIsIgnored(t *testing.T) {
	t.Setenv("MYTASKS_SESSION_TTL", "soon")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
}
