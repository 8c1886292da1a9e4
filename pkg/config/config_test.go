package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "http://localhost:8000", c.Backend.BaseURL)
	assert.Equal(t, 500, c.Logs.MaxLines)
	assert.Len(t, c.Sources, 7)
	assert.Equal(t, 2*time.Second, c.Sources["terminal-log"].Cadence)
	assert.Equal(t, 30*time.Second, c.Sources["news"].Cadence)
	for id, sc := range c.Sources {
		assert.Less(t, sc.Timeout, sc.Cadence, id)
		assert.True(t, sc.IsEnabled(), id)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
backend:
  base_url: http://engine.local:9000/
sources:
  news:
    cadence: 60s
    timeout: 5s
  stats:
    enabled: false
logs:
  max_lines: 200
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://engine.local:9000", c.Backend.BaseURL)
	assert.Equal(t, time.Minute, c.Sources["news"].Cadence)
	assert.Equal(t, 5*time.Second, c.Sources["news"].Timeout)
	assert.False(t, c.Sources["stats"].IsEnabled())
	assert.Equal(t, 200, c.Logs.MaxLines)
}

func TestValidateRejectsTimeoutAtCadence(t *testing.T) {
	path := writeConfig(t, `
sources:
  status:
    cadence: 3s
    timeout: 3s
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources.status.timeout")
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, `
sources:
  candles:
    cadence: 1s
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("MIRROR_BACKEND_URL", "http://10.0.0.5:8000/")
	t.Setenv("MIRROR_HTTP_PORT", "9090")
	t.Setenv("MIRROR_LOG_LEVEL", "DEBUG")
	t.Setenv("MIRROR_REDIS_ADDR", "redis:6379")

	c, err := LoadWithEnv("")
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8000", c.Backend.BaseURL)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "debug", c.Logger.Level)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
}

func TestLoadWithEnvBadPort(t *testing.T) {
	t.Setenv("MIRROR_HTTP_PORT", "eighty")
	_, err := LoadWithEnv("")
	require.Error(t, err)
}
