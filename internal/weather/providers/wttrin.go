package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AScotM/vilnius-weather-gui-test/internal/fetch"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

// WttrInProvider implements weather.Provider for wttr.in's structured j1
// JSON format. It is keyless and queries by URL-escaped city path segment.
// All numeric fields arrive as strings in this format.
type WttrInProvider struct {
	name    string
	baseURL string
	client  *fetch.Client
	logger  zerolog.Logger
}

// NewWttrInProvider creates the wttr.in adapter.
func NewWttrInProvider(client *fetch.Client, logger zerolog.Logger) *WttrInProvider {
	return &WttrInProvider{
		name:    weather.SourceWttrIn,
		baseURL: "https://wttr.in",
		client:  client,
		logger:  logger,
	}
}

func (p *WttrInProvider) Name() string {
	return p.name
}

// Fetch reads the first element of the current_condition array. An empty or
// absent array, or an unparseable temperature, is a hard failure.
func (p *WttrInProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("format", "j1")

	raw, err := p.client.Get(ctx, p.baseURL+"/"+url.PathEscape(loc.City), params)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("wttr.in: %w", err)
	}

	var payload struct {
		CurrentCondition []struct {
			TempC      string `json:"temp_C"`
			FeelsLikeC string `json:"FeelsLikeC"`
			Humidity   string `json:"humidity"`
			Pressure   string `json:"pressure"`
			WindKmph   string `json:"windspeedKmph"`
			WindDegree string `json:"winddirDegree"`
			Desc       []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"current_condition"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("wttr.in: %w: %v", weather.ErrNoData, err)
	}
	if len(payload.CurrentCondition) == 0 {
		return weather.Snapshot{}, fmt.Errorf("wttr.in: %w: missing current_condition", weather.ErrNoData)
	}
	cur := payload.CurrentCondition[0]

	temp, err := strconv.ParseFloat(strings.TrimSpace(cur.TempC), 64)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("wttr.in: %w: missing temperature", weather.ErrNoData)
	}

	desc := unknownDescription
	if len(cur.Desc) > 0 && cur.Desc[0].Value != "" {
		desc = cur.Desc[0].Value
	}

	snap := weather.Snapshot{
		Temperature:   temp,
		FeelsLike:     parseFloatOr(cur.FeelsLikeC, temp),
		Humidity:      parseFloatOr(cur.Humidity, 0),
		Pressure:      parseFloatOr(cur.Pressure, 0),
		WindSpeed:     parseFloatOr(cur.WindKmph, 0) * kphToMps,
		WindDirection: parseFloatOr(cur.WindDegree, 0),
		Description:   desc,
		Source:        p.name,
		City:          loc.City,
	}
	if err := snap.Validate(); err != nil {
		return weather.Snapshot{}, fmt.Errorf("wttr.in: %w", err)
	}
	return snap, nil
}
