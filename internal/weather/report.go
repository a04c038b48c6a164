package weather

import (
	"fmt"
	"strings"
	"time"
)

// NoDataMessage is the fixed report body when every source failed.
const NoDataMessage = "No weather data could be retrieved from any source.\n"

// FormatReport renders a result set into the human-readable summary. The
// output is fully determined by the result and the supplied clock reading.
func FormatReport(res Result, now time.Time) string {
	if res.Len() == 0 {
		return NoDataMessage
	}

	sources := res.Sources()
	first, _ := res.Get(sources[0])

	var b strings.Builder
	fmt.Fprintf(&b, "%s REPORT\n", first.City)
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	for _, source := range sources {
		snap, _ := res.Get(source)
		fmt.Fprintf(&b, "%s:\n", source)
		fmt.Fprintf(&b, "  Temperature: %.1f°C\n", snap.Temperature)
		fmt.Fprintf(&b, "  Feels like: %.1f°C\n", snap.FeelsLike)
		fmt.Fprintf(&b, "  Conditions: %s\n", snap.Description)
		fmt.Fprintf(&b, "  Humidity: %.0f%%\n", snap.Humidity)
		fmt.Fprintf(&b, "  Pressure: %.0f hPa\n", snap.Pressure)
		fmt.Fprintf(&b, "  Wind: %.1f m/s\n", snap.WindSpeed)
		b.WriteString("\n")
	}

	if avg, ok := res.AverageTemperature(); ok {
		fmt.Fprintf(&b, "Average Temperature: %.1f°C\n", avg)
	}
	fmt.Fprintf(&b, "Successful sources: %d\n", res.Len())

	return b.String()
}
