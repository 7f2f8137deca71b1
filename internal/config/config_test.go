package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "statements.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://data.sec.gov", cfg.EDGAR.BaseURL)
	assert.Equal(t, 30, cfg.EDGAR.TimeoutSecs)
	assert.Equal(t, 3, cfg.EDGAR.MaxRetries)
	assert.Equal(t, "raw", cfg.Render.View)
	assert.Equal(t, "all", cfg.Render.Periods)
	assert.False(t, cfg.Render.IncludeDimensions)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STMTENG_STORE_DRIVER", "postgres")
	t.Setenv("STMTENG_RENDER_VIEW", "presentation")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "presentation", cfg.Render.View)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
