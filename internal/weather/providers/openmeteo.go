package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/AScotM/vilnius-weather-gui-test/internal/fetch"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

// currentFields is the fixed set of current-weather fields requested from the
// Open-Meteo forecast endpoint.
const currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature," +
	"weather_code,pressure_msl,wind_speed_10m,wind_direction_10m"

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It is keyless
// and queries by coordinates.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *fetch.Client
	logger  zerolog.Logger
}

// NewOpenMeteoProvider creates the Open-Meteo adapter.
func NewOpenMeteoProvider(client *fetch.Client, logger zerolog.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    weather.SourceOpenMeteo,
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		logger:  logger,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch queries the forecast endpoint and normalizes the `current` block.
// A missing block or missing temperature is a hard failure; every other field
// is guarded with an explicit default.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	params.Set("current", currentFields)
	params.Set("timezone", "Europe/Vilnius")

	raw, err := p.client.Get(ctx, p.baseURL, params)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("open-meteo: %w", err)
	}

	var payload struct {
		Current *struct {
			Temperature *float64 `json:"temperature_2m"`
			Humidity    *float64 `json:"relative_humidity_2m"`
			FeelsLike   *float64 `json:"apparent_temperature"`
			WeatherCode *int     `json:"weather_code"`
			Pressure    *float64 `json:"pressure_msl"`
			WindSpeed   *float64 `json:"wind_speed_10m"`
			WindDir     *float64 `json:"wind_direction_10m"`
		} `json:"current"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("open-meteo: %w: %v", weather.ErrNoData, err)
	}
	if payload.Current == nil {
		return weather.Snapshot{}, fmt.Errorf("open-meteo: %w: missing current block", weather.ErrNoData)
	}
	cur := payload.Current
	if cur.Temperature == nil {
		return weather.Snapshot{}, fmt.Errorf("open-meteo: %w: missing temperature", weather.ErrNoData)
	}

	snap := weather.Snapshot{
		Temperature:   *cur.Temperature,
		FeelsLike:     floatOr(cur.FeelsLike, *cur.Temperature),
		Humidity:      floatOr(cur.Humidity, 0),
		Pressure:      floatOr(cur.Pressure, 0),
		WindSpeed:     floatOr(cur.WindSpeed, 0),
		WindDirection: floatOr(cur.WindDir, 0),
		Description:   describeWeatherCode(cur.WeatherCode),
		Source:        p.name,
		City:          loc.City,
	}
	if err := snap.Validate(); err != nil {
		return weather.Snapshot{}, fmt.Errorf("open-meteo: %w", err)
	}
	return snap, nil
}
