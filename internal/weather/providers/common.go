// Package providers contains one adapter per upstream weather service. Each
// adapter builds its provider's request, fetches through the shared HTTP
// client, and maps the provider's own JSON shape into the canonical snapshot.
package providers

import (
	"strconv"
	"strings"
)

// kphToMps converts provider wind speeds from km/h to the canonical m/s.
const kphToMps = 1.0 / 3.6

// unknownDescription is the textual condition used when a provider omits one
// or reports a code outside the known table.
const unknownDescription = "Unknown"

// floatOr dereferences an optional JSON number, falling back to def when the
// provider omitted the field.
func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// parseFloatOr parses a string-typed numeric field (wttr.in encodes integers
// as strings), falling back to def on absence or garbage.
func parseFloatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}
