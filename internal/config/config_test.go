package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutEnvFile(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("GUIDES_SEARCH_RADIUS_KM", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "./static", cfg.Server.MediaDir)
	assert.Equal(t, 50.0, cfg.Guides.SearchRadiusKm)
	assert.Equal(t, 200, cfg.Guides.MaxResults)
	assert.Equal(t, 60*time.Second, cfg.Cache.GuidesCacheTTL)
	assert.Equal(t, 3, cfg.Plays.RateBurst)
	assert.Equal(t, "guide-play-workers", cfg.Worker.ConsumerGroup)
	assert.Equal(t, "https://api.mapbox.com", cfg.Mapbox.BaseURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("API_HOST", "0.0.0.0")
	t.Setenv("API_PORT", "8080")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("GUIDES_CACHE_TTL", "5")
	t.Setenv("PLAY_RATE_BURST", "7")
	t.Setenv("WORKER_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5*time.Second, cfg.Cache.GuidesCacheTTL)
	assert.Equal(t, 7, cfg.Plays.RateBurst)
	assert.True(t, cfg.Worker.Enabled)
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db port=5432")
}
