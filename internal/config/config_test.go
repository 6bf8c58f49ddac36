package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
logs_path = ""
log_to_stdout = true
sentry_enabled = false
content_root_path = "./content"
users_file_path = "./data/users.json"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "9001"

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/tretaweb/service.log"
log_to_stdout = false
sentry_enabled = true
content_root_path = "/var/lib/tretaweb/content"
users_file_path = "/var/lib/tretaweb/users.json"
login_rate_limit_max_attempts = 10
login_rate_limit_window_mins = 15
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "9001"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o644))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.False(t, cfg.SentryEnabled)
	assert.False(t, cfg.CookieSecure())

	// rate limit defaults kick in when unset
	assert.Equal(t, 10, cfg.LoginRateLimitMaxAttempts)
	assert.Equal(t, 15, cfg.LoginRateLimitWindowMins)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("prod", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.SentryEnabled)
	assert.True(t, cfg.CookieSecure())
	assert.Equal(t, "/var/lib/tretaweb/content", cfg.ContentRootPath)
}

func TestLoad_UnknownEnv(t *testing.T) {
	_, err := Load("staging", writeTestConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("development", "/nonexistent/config.toml")
	require.Error(t, err)
}
