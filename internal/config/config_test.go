package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protrackhq/protrack/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 3001, cfg.Server.Port)
	require.Equal(t, "http://localhost:3000", cfg.Server.CORSOrigin)
	require.Equal(t, "data/protrack.json", cfg.Store.Path)
	require.Equal(t, 30, cfg.AI.TimeoutSeconds)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROTRACK_SERVER_HOST", "127.0.0.1")
	t.Setenv("PROTRACK_SERVER_PORT", "8080")
	t.Setenv("PROTRACK_CORS_ORIGIN", "https://app.example.com")
	t.Setenv("PROTRACK_DATA_PATH", "/var/lib/protrack/data.json")
	t.Setenv("PROTRACK_GEMINI_API_KEY", "k-123")
	t.Setenv("PROTRACK_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "https://app.example.com", cfg.Server.CORSOrigin)
	require.Equal(t, "/var/lib/protrack/data.json", cfg.Store.Path)
	require.Equal(t, "k-123", cfg.AI.APIKey)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "bare-key")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "bare-key", cfg.AI.APIKey)

	// The prefixed variable wins over the bare one.
	t.Setenv("PROTRACK_GEMINI_API_KEY", "prefixed-key")
	cfg, err = config.Load()
	require.NoError(t, err)
	require.Equal(t, "prefixed-key", cfg.AI.APIKey)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PROTRACK_SERVER_PORT", "not-a-port")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  host: 10.0.0.1
  port: 9000
store:
  path: /srv/protrack.json
log:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("PROTRACK_CONFIG_PATH", path)
	t.Setenv("PROTRACK_SERVER_PORT", "9100")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "10.0.0.1", cfg.Server.Host)
	// Environment overrides the file.
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "/srv/protrack.json", cfg.Store.Path)
	require.Equal(t, "warn", cfg.Log.Level)
	// Untouched fields keep their defaults.
	require.Equal(t, "http://localhost:3000", cfg.Server.CORSOrigin)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("PROTRACK_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}
