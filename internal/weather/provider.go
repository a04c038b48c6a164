package weather

import "context"

// Provider abstracts one weather data source (Open-Meteo, wttr.in,
// WeatherAPI). Fetch builds the request, calls the upstream API, and maps the
// provider's own JSON shape into the canonical Snapshot. Implementations
// return an error instead of a partial snapshot when required fields are
// missing.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Snapshot, error)
}
