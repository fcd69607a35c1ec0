package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "3100", env.HTTPPort)
	assert.Equal(t, "memory", env.StorageEnv.Type)
	assert.True(t, env.SeedDemo)
	assert.True(t, env.UniqueTitles)
	assert.Equal(t, slog.LevelInfo, env.SlogLevel())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_HTTP_PORT", "8080")
	t.Setenv("TASKBOARD_STORAGE_TYPE", "sqlite")
	t.Setenv("TASKBOARD_LOG_LEVEL", "debug")
	t.Setenv("TASKBOARD_SEED_DEMO", "false")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", env.HTTPPort)
	assert.Equal(t, "sqlite", env.StorageEnv.Type)
	assert.False(t, env.SeedDemo)
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
}

func TestLoadEnvRejectsUnknownStorage(t *testing.T) {
	t.Setenv("TASKBOARD_STORAGE_TYPE", "floppy")

	_, err := LoadEnv()
	assert.Error(t, err)
}

func TestLoadClientEnv(t *testing.T) {
	t.Setenv("TASKBOARD_MOCK_LATENCY", "25ms")

	env, err := LoadClientEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3100", env.APIURL)
	assert.Equal(t, 10*time.Second, env.RequestTimeout)
	assert.Equal(t, 25*time.Millisecond, env.MockLatency)
	assert.Equal(t, 10*time.Minute, env.AgentTimeout)
	assert.Equal(t, 30, env.AgentMaxTurns)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TASKBOARD_DOTENV_CHECK=yes\n"), 0o644))
	t.Setenv("TASKBOARD_DOTENV_CHECK", "")
	require.NoError(t, os.Unsetenv("TASKBOARD_DOTENV_CHECK"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "yes", os.Getenv("TASKBOARD_DOTENV_CHECK"))
}
