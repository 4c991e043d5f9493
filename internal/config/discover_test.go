package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDiscover(t *testing.T, args ...string) (*DiscoverConfig, error) {
	t.Helper()
	flags := DiscoverFlags()
	require.NoError(t, flags.Parse(args))
	return LoadDiscover(flags)
}

func TestLoadDiscover_Defaults(t *testing.T) {
	cfg, err := loadDiscover(t)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "closest", cfg.Sort)
	assert.Nil(t, cfg.Latitude)
	assert.Nil(t, cfg.Longitude)
	assert.Empty(t, cfg.Tags)
	assert.Empty(t, cfg.Language)
	assert.False(t, cfg.IPGeo)
}

func TestLoadDiscover_Flags(t *testing.T) {
	cfg, err := loadDiscover(t,
		"--api", "http://guides.test",
		"--lat", "38.7223", "--lon", "-9.1393",
		"--tags", "history,walk", "--tags", "food",
		"--sort", "Popularity",
		"--language", "PT",
		"--play", "12",
		"--http-timeout", "3s",
	)
	require.NoError(t, err)

	assert.Equal(t, "http://guides.test", cfg.APIURL)
	require.NotNil(t, cfg.Latitude)
	assert.Equal(t, 38.7223, *cfg.Latitude)
	assert.Equal(t, -9.1393, *cfg.Longitude)
	assert.Equal(t, []string{"history", "walk", "food"}, cfg.Tags)
	assert.Equal(t, "popularity", cfg.Sort)
	assert.Equal(t, "pt", cfg.Language)
	assert.Equal(t, "12", cfg.Play)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestLoadDiscover_Environment(t *testing.T) {
	t.Setenv("DISCOVER_API", "http://env.test")
	t.Setenv("DISCOVER_IP_GEO", "true")
	t.Setenv("DISCOVER_PREFS_PATH", "/tmp/prefs.yaml")
	t.Setenv("DISCOVER_LANGUAGE", "fr")

	cfg, err := loadDiscover(t)
	require.NoError(t, err)

	assert.Equal(t, "http://env.test", cfg.APIURL)
	assert.True(t, cfg.IPGeo)
	assert.Equal(t, "/tmp/prefs.yaml", cfg.Prefs)
	assert.Equal(t, "fr", cfg.Language)

	cfg, err = loadDiscover(t, "--api", "http://flag.test")
	require.NoError(t, err)
	assert.Equal(t, "http://flag.test", cfg.APIURL, "flags win over the environment")
}

func TestLoadDiscover_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"lat without lon", []string{"--lat", "1"}},
		{"out of range", []string{"--lat", "91", "--lon", "0"}},
		{"unknown sort", []string{"--sort", "newest"}},
		{"unsupported language", []string{"--language", "xx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadDiscover(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
