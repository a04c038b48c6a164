// Package scheduler periodically refreshes the aggregation for the configured
// location so the HTTP presentation can serve a recent result without
// fetching inline.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

// Scheduler re-runs the aggregation at a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	location  weather.Location
	interval  time.Duration
	logger    zerolog.Logger
}

// New creates a Scheduler.
func New(loc weather.Location, interval time.Duration, service *weather.Service, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		location:  loc,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		// Three providers with pacing plus retries stay well under a minute;
		// the timeout guards against a wedged run piling up behind the next.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := s.service.Current(ctx, s.location); err != nil {
			s.logger.Warn().Err(err).Str("location", s.location.Key()).Msg("scheduled refresh failed")
			return
		}
		s.logger.Debug().Str("location", s.location.Key()).Msg("scheduled refresh completed")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
