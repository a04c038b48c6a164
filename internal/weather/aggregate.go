package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/AScotM/vilnius-weather-gui-test/internal/observability"
)

// DefaultPacingDelay is the pause after every provider call. The free
// services this engine queries enforce informal rate limits; the delay is a
// deliberate serialization, not an artifact of single-threading.
const DefaultPacingDelay = 500 * time.Millisecond

// Aggregator invokes every configured provider in a fixed order and collects
// the successes into one Result. Provider failures are logged and counted but
// never abort the run.
type Aggregator struct {
	providers []Provider
	delay     time.Duration
	clock     clockwork.Clock
	validate  *validator.Validate
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithPacingDelay overrides the inter-provider pacing delay. Tests inject
// zero.
func WithPacingDelay(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.delay = d }
}

// WithClock swaps the time source used for pacing, for tests.
func WithClock(clock clockwork.Clock) AggregatorOption {
	return func(a *Aggregator) { a.clock = clock }
}

// NewAggregator creates an Aggregator over the given providers. Provider
// order is preserved; it determines display order, nothing else.
func NewAggregator(providers []Provider, metrics *observability.Metrics, logger zerolog.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		providers: providers,
		delay:     DefaultPacingDelay,
		clock:     clockwork.NewRealClock(),
		validate:  validator.New(),
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run queries all providers sequentially for one location and returns the
// partial result set. It returns an error only for invalid caller-supplied
// location parameters (checked before any network activity) or for context
// cancellation, in which case the snapshots collected so far accompany the
// error. An all-providers-failed run is an empty Result and a nil error.
func (a *Aggregator) Run(ctx context.Context, loc Location) (Result, error) {
	if err := a.validate.Struct(loc); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}

	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Str("location", loc.Key()).Logger()
	a.metrics.AggregationRuns.Inc()

	var res Result
	for _, p := range a.providers {
		// Cancellation is honored between provider calls; an in-flight
		// provider call is bounded by the fetch timeout anyway.
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := a.clock.Now()
		snap, err := p.Fetch(ctx, loc)
		a.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(a.clock.Since(start).Seconds())

		if err != nil {
			a.metrics.ProviderFetches.WithLabelValues(p.Name(), "failure").Inc()
			logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider fetch failed")
		} else {
			a.metrics.ProviderFetches.WithLabelValues(p.Name(), "success").Inc()
			logger.Info().Str("provider", p.Name()).Msg("provider fetch succeeded")
			res.Add(p.Name(), snap)
		}

		if a.delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-a.clock.After(a.delay):
			}
		}
	}

	if res.Len() == 0 {
		logger.Warn().Msg("no provider returned usable data")
	}
	return res, nil
}
