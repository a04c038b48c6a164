package weather

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Source identifiers for the configured providers, in display order.
const (
	SourceOpenMeteo  = "Open-Meteo"
	SourceWttrIn     = "wttr.in"
	SourceWeatherAPI = "WeatherAPI"
)

var (
	// ErrNoData marks a provider response that was received but did not
	// contain the fields a snapshot requires.
	ErrNoData = errors.New("provider returned no usable data")

	// ErrInvalidLocation marks caller-supplied location parameters that were
	// rejected before any network activity.
	ErrInvalidLocation = errors.New("invalid location")
)

// Location identifies the place one aggregation run queries. It is immutable
// once a run starts.
type Location struct {
	City string  `json:"city" validate:"required"`
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return fmt.Sprintf("%s:%.4f,%.4f", strings.ToLower(l.City), l.Lat, l.Lon)
}

// Snapshot is one normalized current-weather observation from one source.
// Temperature is always present; the remaining numeric fields default to a
// neutral zero when the provider omits them.
type Snapshot struct {
	Temperature   float64 `json:"temperatureC"`
	FeelsLike     float64 `json:"feelsLikeC"`
	Humidity      float64 `json:"humidityPercent"`
	Pressure      float64 `json:"pressureHpa"`
	WindSpeed     float64 `json:"windSpeedMs"`
	WindDirection float64 `json:"windDirectionDeg"`
	Description   string  `json:"description"`
	Source        string  `json:"source"`
	City          string  `json:"city"`
}

// Validate enforces the shared post-fetch contract: temperature numeric,
// description, source, and city all present. Adapters must not hand out a
// snapshot that fails this, even when the provider returned 200 OK.
func (s Snapshot) Validate() error {
	switch {
	case math.IsNaN(s.Temperature):
		return fmt.Errorf("%w: temperature is not numeric", ErrNoData)
	case s.Description == "":
		return fmt.Errorf("%w: missing description", ErrNoData)
	case s.Source == "":
		return fmt.Errorf("%w: missing source", ErrNoData)
	case s.City == "":
		return fmt.Errorf("%w: missing city", ErrNoData)
	}
	return nil
}

// Result is an insertion-ordered mapping from source identifier to Snapshot,
// covering only the sources that succeeded in one aggregation run. A source
// absent from the result failed; an empty result means every source failed.
type Result struct {
	order     []string
	snapshots map[string]Snapshot
}

// Add records a snapshot under its source identifier, preserving insertion
// order. Re-adding a source overwrites the snapshot without reordering.
func (r *Result) Add(source string, snap Snapshot) {
	if r.snapshots == nil {
		r.snapshots = make(map[string]Snapshot)
	}
	if _, exists := r.snapshots[source]; !exists {
		r.order = append(r.order, source)
	}
	r.snapshots[source] = snap
}

// Get returns the snapshot for a source, if present.
func (r Result) Get(source string) (Snapshot, bool) {
	snap, ok := r.snapshots[source]
	return snap, ok
}

// Sources returns the successful source identifiers in insertion order.
func (r Result) Sources() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of successful sources.
func (r Result) Len() int {
	return len(r.order)
}

// AverageTemperature returns the cross-source arithmetic mean temperature.
// The second return is false for an empty result.
func (r Result) AverageTemperature() (float64, bool) {
	if len(r.order) == 0 {
		return 0, false
	}
	var sum float64
	for _, source := range r.order {
		sum += r.snapshots[source].Temperature
	}
	return sum / float64(len(r.order)), true
}
