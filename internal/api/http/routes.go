// Package httpapi is the HTTP presentation over the aggregation engine. It
// renders stored or freshly fetched results; the engine itself knows nothing
// about it.
package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AScotM/vilnius-weather-gui-test/internal/store"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

var validate = validator.New()

// currentResponse is the JSON shape for an aggregation run. Sources keep the
// engine's insertion order.
type currentResponse struct {
	Location          weather.Location   `json:"location"`
	FetchedAt         time.Time          `json:"fetchedAt"`
	Sources           []weather.Snapshot `json:"sources"`
	AverageTempC      *float64           `json:"averageTemperatureC,omitempty"`
	SuccessfulSources int                `json:"successfulSources"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaultLoc fills
// in any query parameter the caller omits.
func RegisterRoutes(app *fiber.App, service *weather.Service, defaultLoc weather.Location) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		loc, refresh, err := parseLocationQuery(c, defaultLoc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := lookupOrFetch(c, service, loc, refresh)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(rec))
	})

	v1.Get("/weather/report", func(c *fiber.Ctx) error {
		loc, refresh, err := parseLocationQuery(c, defaultLoc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := lookupOrFetch(c, service, loc, refresh)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(weather.FormatReport(rec.Result, rec.FetchedAt))
	})
}

// lookupOrFetch serves the stored run when one exists, and runs a fresh
// aggregation on a cache miss or an explicit refresh request.
func lookupOrFetch(c *fiber.Ctx, service *weather.Service, loc weather.Location, refresh bool) (weather.RunRecord, error) {
	if !refresh {
		rec, err := service.Latest(loc)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return weather.RunRecord{}, fiber.NewError(fiber.StatusInternalServerError, "failed to read stored weather data")
		}
	}

	rec, err := service.Current(c.UserContext(), loc)
	if err != nil {
		if errors.Is(err, weather.ErrInvalidLocation) {
			return weather.RunRecord{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return weather.RunRecord{}, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
	return rec, nil
}

func toResponse(rec weather.RunRecord) currentResponse {
	resp := currentResponse{
		Location:          rec.Location,
		FetchedAt:         rec.FetchedAt,
		Sources:           make([]weather.Snapshot, 0, rec.Result.Len()),
		SuccessfulSources: rec.Result.Len(),
	}
	for _, source := range rec.Result.Sources() {
		snap, _ := rec.Result.Get(source)
		resp.Sources = append(resp.Sources, snap)
	}
	if avg, ok := rec.Result.AverageTemperature(); ok {
		resp.AverageTempC = &avg
	}
	return resp
}

// parseLocationQuery binds city/lat/lon/refresh query parameters over the
// configured default location and validates the outcome before the engine
// sees it.
func parseLocationQuery(c *fiber.Ctx, defaultLoc weather.Location) (weather.Location, bool, error) {
	loc := defaultLoc

	if city := c.Query("city"); city != "" {
		loc.City = city
	}
	if latStr := c.Query("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, false, errors.New("lat must be a number")
		}
		loc.Lat = lat
	}
	if lonStr := c.Query("lon"); lonStr != "" {
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, false, errors.New("lon must be a number")
		}
		loc.Lon = lon
	}

	if err := validate.Struct(loc); err != nil {
		return weather.Location{}, false, err
	}

	refresh := c.QueryBool("refresh", false)
	return loc, refresh, nil
}
