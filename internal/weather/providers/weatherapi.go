package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/AScotM/vilnius-weather-gui-test/internal/fetch"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

// PlaceholderAPIKey is the key used when none is configured. WeatherAPI will
// usually reject it, so its use is logged as a degraded-credential condition
// at construction, not treated as an error.
const PlaceholderAPIKey = "demo"

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com. It
// queries by city name and requires an API key.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *fetch.Client
	logger  zerolog.Logger
}

// NewWeatherAPIProvider creates the WeatherAPI adapter. An empty key falls
// back to the placeholder.
func NewWeatherAPIProvider(client *fetch.Client, apiKey string, logger zerolog.Logger) *WeatherAPIProvider {
	if apiKey == "" {
		apiKey = PlaceholderAPIKey
	}
	if apiKey == PlaceholderAPIKey {
		logger.Warn().Msg("using placeholder WeatherAPI key; requests will likely be rejected")
	}
	return &WeatherAPIProvider{
		name:    weather.SourceWeatherAPI,
		apiKey:  apiKey,
		baseURL: "http://api.weatherapi.com/v1/current.json",
		client:  client,
		logger:  logger,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Fetch queries the current-conditions endpoint by city name. Wind speed
// arrives in km/h and is converted to m/s.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", loc.City)
	params.Set("aqi", "no")

	raw, err := p.client.Get(ctx, p.baseURL, params)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: %w", err)
	}

	var payload struct {
		Current *struct {
			TempC      *float64 `json:"temp_c"`
			FeelsLikeC *float64 `json:"feelslike_c"`
			Humidity   *float64 `json:"humidity"`
			PressureMb *float64 `json:"pressure_mb"`
			WindKph    *float64 `json:"wind_kph"`
			WindDegree *float64 `json:"wind_degree"`
			Condition  struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: %w: %v", weather.ErrNoData, err)
	}
	if payload.Current == nil {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: %w: missing current block", weather.ErrNoData)
	}
	cur := payload.Current
	if cur.TempC == nil {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: %w: missing temperature", weather.ErrNoData)
	}

	desc := cur.Condition.Text
	if desc == "" {
		desc = unknownDescription
	}

	snap := weather.Snapshot{
		Temperature:   *cur.TempC,
		FeelsLike:     floatOr(cur.FeelsLikeC, *cur.TempC),
		Humidity:      floatOr(cur.Humidity, 0),
		Pressure:      floatOr(cur.PressureMb, 0),
		WindSpeed:     floatOr(cur.WindKph, 0) * kphToMps,
		WindDirection: floatOr(cur.WindDegree, 0),
		Description:   desc,
		Source:        p.name,
		City:          loc.City,
	}
	if err := snap.Validate(); err != nil {
		return weather.Snapshot{}, fmt.Errorf("weatherapi: %w", err)
	}
	return snap, nil
}
