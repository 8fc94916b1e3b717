package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Documents.DataDir)
	assert.Equal(t, "./vector_store", cfg.Documents.IndexDir)
	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Generation.Model)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, 0.6, cfg.CircuitBreaker.ReadyToTripRatio)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("REGKB_DATA_DIR", "/srv/docs")
	t.Setenv("REGKB_INDEX_DIR", "/srv/index")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gem-key", cfg.Generation.APIKey)
	assert.Equal(t, "/srv/docs", cfg.Documents.DataDir)
	assert.Equal(t, "/srv/index", cfg.Documents.IndexDir)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestOpenAIKeyOnlyAppliesToOpenAIProviders(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("OPENAI_API_KEY", "oa-key")

	cfg, err := Load()
	require.NoError(t, err)

	// Defaults are gemini generation and local embedding, so the OpenAI
	// key must not leak into either.
	assert.Empty(t, cfg.Generation.APIKey)
	assert.Empty(t, cfg.Embedding.APIKey)

	viper.Reset()
	viper.Set("generation.provider", "openai")
	viper.Set("embedding.provider", "openai")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "oa-key", cfg.Generation.APIKey)
	assert.Equal(t, "oa-key", cfg.Embedding.APIKey)
}
