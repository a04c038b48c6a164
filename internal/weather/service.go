package weather

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// RunRecord is one completed aggregation run kept for later lookup.
type RunRecord struct {
	Location  Location  `json:"location"`
	Result    Result    `json:"-"`
	FetchedAt time.Time `json:"fetchedAt"` // always UTC
}

// Store is the contract the in-memory run store (and any future persistent
// store) must satisfy.
type Store interface {
	SaveRun(loc Location, rec RunRecord)
	Latest(loc Location) (RunRecord, error)
}

// Service is the caller-facing entry point: it runs aggregations, records
// them, and renders reports. All methods are synchronous; callers that need a
// responsive interface run them off their interactive thread.
type Service struct {
	agg    *Aggregator
	store  Store
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewService creates a Service.
func NewService(agg *Aggregator, store Store, clock clockwork.Clock, logger zerolog.Logger) *Service {
	return &Service{
		agg:    agg,
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Current runs one aggregation for the location and records the outcome. The
// record is stored even when every source failed, so callers can distinguish
// "never fetched" from "fetched, nothing available".
func (s *Service) Current(ctx context.Context, loc Location) (RunRecord, error) {
	res, err := s.agg.Run(ctx, loc)
	if err != nil {
		return RunRecord{}, err
	}

	rec := RunRecord{
		Location:  loc,
		Result:    res,
		FetchedAt: s.clock.Now().UTC(),
	}
	s.store.SaveRun(loc, rec)
	return rec, nil
}

// Report runs one aggregation and returns the formatted text summary.
func (s *Service) Report(ctx context.Context, loc Location) (string, error) {
	rec, err := s.Current(ctx, loc)
	if err != nil {
		return "", err
	}
	return FormatReport(rec.Result, rec.FetchedAt), nil
}

// Latest returns the most recently recorded run without fetching.
func (s *Service) Latest(loc Location) (RunRecord, error) {
	return s.store.Latest(loc)
}
