package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpapi "github.com/AScotM/vilnius-weather-gui-test/internal/api/http"
	"github.com/AScotM/vilnius-weather-gui-test/internal/cache"
	"github.com/AScotM/vilnius-weather-gui-test/internal/config"
	"github.com/AScotM/vilnius-weather-gui-test/internal/fetch"
	"github.com/AScotM/vilnius-weather-gui-test/internal/observability"
	"github.com/AScotM/vilnius-weather-gui-test/internal/scheduler"
	"github.com/AScotM/vilnius-weather-gui-test/internal/store"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
	"github.com/AScotM/vilnius-weather-gui-test/internal/weather/providers"
)

func main() {
	// .env is optional; absence is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var respCache *cache.Cache
	if cfg.CacheEnabled {
		respCache, err = cache.New(cfg.CacheDir, logger, cache.WithTTL(cfg.CacheTTL))
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("failed to initialize response cache")
		}
		stats := respCache.Sweep(cfg.CacheMaxAge)
		metrics.CacheSweepRemoved.Add(float64(stats.Removed))
		metrics.CacheEnabled.Set(1)
		logger.Info().Str("dir", cfg.CacheDir).Dur("ttl", cfg.CacheTTL).
			Int("swept", stats.Removed).Msg("response cache enabled")
	} else {
		logger.Info().Msg("response cache disabled")
	}

	fetchCfg := fetch.DefaultConfig()
	fetchCfg.Timeout = cfg.RequestTimeout
	client := fetch.NewClient(fetchCfg, respCache, metrics, logger)

	// Provider order is the fixed display order.
	provs := []weather.Provider{
		providers.NewOpenMeteoProvider(client, logger),
		providers.NewWttrInProvider(client, logger),
		providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey, logger),
	}

	agg := weather.NewAggregator(provs, metrics, logger,
		weather.WithPacingDelay(cfg.RequestDelay))
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(agg, memStore, clockwork.NewRealClock(), logger)

	if cfg.RunMode == config.ModeOnce {
		runOnce(service, cfg.Location, logger)
		return
	}

	serve(cfg, service, logger)
}

// runOnce performs a single aggregation and prints the report, mirroring a
// one-shot dashboard refresh.
func runOnce(service *weather.Service, loc weather.Location, logger zerolog.Logger) {
	report, err := service.Report(context.Background(), loc)
	if err != nil {
		logger.Fatal().Err(err).Msg("aggregation failed")
	}
	fmt.Print(report)
}

func serve(cfg *config.AppConfig, service *weather.Service, logger zerolog.Logger) {
	sched := scheduler.New(cfg.Location, cfg.FetchInterval, service, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "vilnius-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "vilnius-weather",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service, cfg.Location)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	logger.Info().Str("port", cfg.Port).Str("location", cfg.Location.Key()).Msg("serving")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}
