package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AScotM/vilnius-weather-gui-test/internal/fetch"
	"github.com/AScotM/vilnius-weather-gui-test/internal/observability"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

func testFetchClient() *fetch.Client {
	cfg := fetch.Config{
		Timeout:     time.Second,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
	}
	return fetch.NewClient(cfg, nil, observability.NewMetricsForTesting(), zerolog.Nop())
}

func vilnius() weather.Location {
	return weather.Location{City: "Vilnius", Lat: 54.6872, Lon: 25.2797}
}

func TestOpenMeteo_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "54.6872", q.Get("latitude"))
		assert.Equal(t, "25.2797", q.Get("longitude"))
		assert.Equal(t, currentFields, q.Get("current"))
		assert.Equal(t, "Europe/Vilnius", q.Get("timezone"))

		_, _ = w.Write([]byte(`{
			"current": {
				"temperature_2m": 12.5,
				"relative_humidity_2m": 71,
				"apparent_temperature": 10.8,
				"weather_code": 3,
				"pressure_msl": 1012.3,
				"wind_speed_10m": 4.2,
				"wind_direction_10m": 215
			}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	snap, err := p.Fetch(context.Background(), vilnius())
	require.NoError(t, err)

	assert.Equal(t, weather.SourceOpenMeteo, snap.Source)
	assert.Equal(t, "Vilnius", snap.City)
	assert.Equal(t, 12.5, snap.Temperature)
	assert.Equal(t, 10.8, snap.FeelsLike)
	assert.Equal(t, 71.0, snap.Humidity)
	assert.Equal(t, 1012.3, snap.Pressure)
	assert.Equal(t, 4.2, snap.WindSpeed)
	assert.Equal(t, 215.0, snap.WindDirection)
	assert.Equal(t, "Overcast", snap.Description)
}

func TestOpenMeteo_FeelsLikeDefaultsToTemperature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":-3.0,"weather_code":71}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	snap, err := p.Fetch(context.Background(), vilnius())
	require.NoError(t, err)
	assert.Equal(t, -3.0, snap.Temperature)
	assert.Equal(t, -3.0, snap.FeelsLike)
	assert.Equal(t, "Slight snow fall", snap.Description)
}

func TestOpenMeteo_MissingCurrentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude":54.6872}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), vilnius())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestOpenMeteo_MissingTemperature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"relative_humidity_2m":71}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), vilnius())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestDescribeWeatherCode(t *testing.T) {
	clear := 0
	thunderHail := 99
	unmapped := 42

	assert.Equal(t, "Clear sky", describeWeatherCode(&clear))
	assert.Equal(t, "Thunderstorm with heavy hail", describeWeatherCode(&thunderHail))
	assert.Equal(t, unknownDescription, describeWeatherCode(&unmapped))
	assert.Equal(t, unknownDescription, describeWeatherCode(nil))
}
