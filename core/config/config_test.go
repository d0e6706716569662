package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "cardcatalog", cfg.Provider.Name)
	assert.Equal(t, "en", cfg.Provider.Scope)
	assert.Equal(t, 4, cfg.Provider.Retries)
	assert.Equal(t, 5.0, cfg.Provider.RequestsPerSecond)
	assert.Equal(t, 50, cfg.Sync.ChunkSize)
	assert.Equal(t, 720, cfg.Sync.FreshnessWindowMinutes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PROVIDER_API_KEY", "key-from-env")
	t.Setenv("PROVIDER_SCOPE", "jp")
	t.Setenv("SYNC_CHUNK_SIZE", "25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "key-from-env", cfg.Provider.ApiKey)
	assert.Equal(t, "jp", cfg.Provider.Scope)
	assert.Equal(t, 25, cfg.Sync.ChunkSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}
