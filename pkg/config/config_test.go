package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.SolveTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheExpiration)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 2.0, cfg.FetchRateLimit)
	assert.Contains(t, cfg.CorsOrigins, "http://localhost:5173")

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SOLVE_TIMEOUT", "90s")
	t.Setenv("ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.SolveTimeout)
	assert.True(t, cfg.IsProduction())
}
