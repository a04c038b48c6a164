package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AScotM/vilnius-weather-gui-test/internal/geo"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

// Default coordinates used when neither explicit coordinates nor a geocoder
// key are configured.
const (
	DefaultCity = "Vilnius"
	DefaultLat  = 54.6872
	DefaultLon  = 25.2797
)

// Run modes.
const (
	ModeServe = "serve" // HTTP presentation + periodic refresh
	ModeOnce  = "once"  // single aggregation, report to stdout, exit
)

// AppConfig holds all process settings, populated from environment variables.
type AppConfig struct {
	WeatherAPIKey  string
	GeocoderAPIKey string

	// Location the engine aggregates for.
	Location weather.Location

	// Response cache.
	CacheEnabled bool
	CacheDir     string
	CacheTTL     time.Duration
	CacheMaxAge  time.Duration

	// Fetch policy.
	RequestTimeout time.Duration

	// Aggregator pacing.
	RequestDelay time.Duration

	// Scheduler.
	FetchInterval time.Duration

	// In-memory run store retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port      string
	RunMode   string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, applying defaults where
// unset. Malformed coordinates or durations are startup errors; nothing else
// is required.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		WeatherAPIKey:  getenvDefault("WEATHERAPI_KEY", "demo"),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
		CacheDir:       getenvDefault("CACHE_DIR", ".weather_cache"),
		Port:           getenvDefault("PORT", "8080"),
		RunMode:        getenvDefault("RUN_MODE", ModeServe),
		LogLevel:       getenvDefault("LOG_LEVEL", "info"),
		LogFormat:      getenvDefault("LOG_FORMAT", "console"),
	}

	if cfg.RunMode != ModeServe && cfg.RunMode != ModeOnce {
		return nil, fmt.Errorf("invalid RUN_MODE %q: want %q or %q", cfg.RunMode, ModeServe, ModeOnce)
	}

	var err error
	if cfg.CacheEnabled, err = getenvBool("CACHE_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestDelay, err = getenvDuration("REQUEST_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)

	if cfg.Location, err = loadLocation(cfg.GeocoderAPIKey); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadLocation resolves the configured location. Explicit coordinates win;
// with none set, a geocoder key triggers a city lookup, and otherwise the
// Vilnius defaults apply.
func loadLocation(geocoderKey string) (weather.Location, error) {
	loc := weather.Location{
		City: getenvDefault("WEATHER_CITY", DefaultCity),
		Lat:  DefaultLat,
		Lon:  DefaultLon,
	}

	latStr, lonStr := os.Getenv("WEATHER_LAT"), os.Getenv("WEATHER_LON")
	switch {
	case latStr != "" || lonStr != "":
		if latStr == "" || lonStr == "" {
			return weather.Location{}, fmt.Errorf("WEATHER_LAT and WEATHER_LON must be set together")
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, fmt.Errorf("invalid WEATHER_LAT: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, fmt.Errorf("invalid WEATHER_LON: %w", err)
		}
		loc.Lat, loc.Lon = lat, lon

	case geocoderKey != "" && loc.City != DefaultCity:
		lat, lon, err := geo.Resolve(geocoderKey, loc.City)
		if err != nil {
			return weather.Location{}, err
		}
		loc.Lat, loc.Lon = lat, lon
	}

	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
