package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so tests see a clean environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WEATHERAPI_KEY", "GEOCODER_API_KEY",
		"WEATHER_CITY", "WEATHER_LAT", "WEATHER_LON",
		"CACHE_ENABLED", "CACHE_DIR", "CACHE_TTL", "CACHE_MAX_AGE",
		"REQUEST_TIMEOUT", "REQUEST_DELAY", "FETCH_INTERVAL",
		"STORE_MAX_HISTORY", "STORE_MAX_AGE",
		"PORT", "RUN_MODE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.WeatherAPIKey)
	assert.Equal(t, DefaultCity, cfg.Location.City)
	assert.Equal(t, DefaultLat, cfg.Location.Lat)
	assert.Equal(t, DefaultLon, cfg.Location.Lon)

	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, ".weather_cache", cfg.CacheDir)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheMaxAge)

	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)

	assert.Equal(t, 96, cfg.StoreMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.StoreMaxAge)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ModeServe, cfg.RunMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_ExplicitCoordinates(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_CITY", "Kaunas")
	t.Setenv("WEATHER_LAT", "54.8985")
	t.Setenv("WEATHER_LON", "23.9036")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Kaunas", cfg.Location.City)
	assert.Equal(t, 54.8985, cfg.Location.Lat)
	assert.Equal(t, 23.9036, cfg.Location.Lon)
}

func TestLoad_LatWithoutLon(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_LAT", "54.8985")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")
}

func TestLoad_InvalidLat(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_LAT", "north")
	t.Setenv("WEATHER_LON", "23.9036")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_LAT")
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_InvalidBool(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_ENABLED", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_ENABLED")
}

func TestLoad_InvalidRunMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("RUN_MODE", "batch")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_MODE")
}

func TestLoad_OnceMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("RUN_MODE", "once")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("REQUEST_DELAY", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ModeOnce, cfg.RunMode)
	assert.True(t, cfg.CacheEnabled)
	assert.Zero(t, cfg.RequestDelay)
}

func TestLoad_MalformedIntFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_MAX_HISTORY", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 96, cfg.StoreMaxHistory)
}
