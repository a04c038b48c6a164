package store

import (
	"errors"
	"sync"
	"time"

	"github.com/AScotM/vilnius-weather-gui-test/internal/weather"
)

// ErrNotFound is returned when no aggregation run has been recorded for a
// location.
var ErrNotFound = errors.New("no aggregation runs for location")

// MemoryStore is a concurrency-safe in-memory history of aggregation runs,
// keyed by location. It is process-local; nothing is shared across processes.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: runs ordered by FetchedAt ascending
	data map[string][]weather.RunRecord

	// retention configuration
	maxHistory int           // max number of runs per location (<= 0 = unlimited)
	maxAge     time.Duration // max age of runs (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.RunRecord),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveRun appends a run for a location and enforces retention.
func (s *MemoryStore) SaveRun(loc weather.Location, rec weather.RunRecord) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	runs := append(s.data[key], rec)

	if s.maxHistory > 0 && len(runs) > s.maxHistory {
		runs = runs[len(runs)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(runs); i++ {
			if !runs[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		runs = runs[i:]
	}

	s.data[key] = runs
}

// Latest returns the most recent run for a location.
func (s *MemoryStore) Latest(loc weather.Location) (weather.RunRecord, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.data[key]
	if len(runs) == 0 {
		return weather.RunRecord{}, ErrNotFound
	}
	return runs[len(runs)-1], nil
}
