// Package geo resolves a city name to coordinates when none are configured.
package geo

import (
	"fmt"

	"github.com/kelvins/geocoder"
)

// Resolve looks up coordinates for a city through the Google geocoding API.
// It is called once at startup, only when the operator supplied a geocoder
// key instead of explicit coordinates.
func Resolve(apiKey, city string) (lat, lon float64, err error) {
	geocoder.ApiKey = apiKey

	location, err := geocoder.Geocoding(geocoder.Address{City: city})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", city, err)
	}
	return location.Latitude, location.Longitude, nil
}
