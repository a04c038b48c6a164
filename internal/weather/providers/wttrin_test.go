package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

func TestWttrIn_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Vilnius", r.URL.Path)
		assert.Equal(t, "j1", r.URL.Query().Get("format"))

		_, _ = w.Write([]byte(`{
			"current_condition": [{
				"temp_C": "11",
				"FeelsLikeC": "9",
				"humidity": "76",
				"pressure": "1015",
				"windspeedKmph": "18",
				"winddirDegree": "320",
				"weatherDesc": [{"value": "Partly cloudy"}]
			}]
		}`))
	}))
	defer srv.Close()

	p := NewWttrInProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	snap, err := p.Fetch(context.Background(), vilnius())
	require.NoError(t, err)

	assert.Equal(t, weather.SourceWttrIn, snap.Source)
	assert.Equal(t, 11.0, snap.Temperature)
	assert.Equal(t, 9.0, snap.FeelsLike)
	assert.Equal(t, 76.0, snap.Humidity)
	assert.Equal(t, 1015.0, snap.Pressure)
	assert.InDelta(t, 5.0, snap.WindSpeed, 0.05, "18 km/h is 5 m/s")
	assert.Equal(t, 320.0, snap.WindDirection)
	assert.Equal(t, "Partly cloudy", snap.Description)
}

func TestWttrIn_CityIsPathEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"current_condition":[{"temp_C":"20","weatherDesc":[{"value":"Sunny"}]}]}`))
	}))
	defer srv.Close()

	p := NewWttrInProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	loc := weather.Location{City: "New York", Lat: 40.7128, Lon: -74.006}
	_, err := p.Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, "/New%20York", gotPath)
}

func TestWttrIn_EmptyCurrentCondition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current_condition":[]}`))
	}))
	defer srv.Close()

	p := NewWttrInProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), vilnius())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestWttrIn_UnparseableTemperature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current_condition":[{"temp_C":"n/a","weatherDesc":[{"value":"Fog"}]}]}`))
	}))
	defer srv.Close()

	p := NewWttrInProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), vilnius())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestWttrIn_MissingOptionalFieldsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current_condition":[{"temp_C":"-2"}]}`))
	}))
	defer srv.Close()

	p := NewWttrInProvider(testFetchClient(), zerolog.Nop())
	p.baseURL = srv.URL

	snap, err := p.Fetch(context.Background(), vilnius())
	require.NoError(t, err)
	assert.Equal(t, -2.0, snap.Temperature)
	assert.Equal(t, -2.0, snap.FeelsLike, "feels-like defaults to temperature")
	assert.Equal(t, unknownDescription, snap.Description)
	assert.Zero(t, snap.WindSpeed)
}
