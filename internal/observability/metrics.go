package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation engine.
type Metrics struct {
	ProviderFetches  *prometheus.CounterVec   // labels: provider, outcome={success,failure}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	AggregationRuns  prometheus.Counter
	FetchRetries     prometheus.Counter

	// Response cache metrics.
	CacheLookups      *prometheus.CounterVec // labels: result={hit,miss}
	CacheSweepRemoved prometheus.Counter
	CacheEnabled      prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProviderFetches,
		m.ProviderDuration,
		m.AggregationRuns,
		m.FetchRetries,
		m.CacheLookups,
		m.CacheSweepRemoved,
		m.CacheEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct fresh instances without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_agg",
			Name:      "provider_fetches_total",
			Help:      "Provider fetch attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_agg",
			Name:      "provider_fetch_duration_seconds",
			Help:      "Duration of a single provider fetch-and-normalize call.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"provider"}),
		AggregationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_agg",
			Name:      "aggregation_runs_total",
			Help:      "Total aggregation runs started.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_agg",
			Name:      "fetch_retries_total",
			Help:      "HTTP attempts retried after a timeout.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_agg",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		CacheSweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_agg",
			Name:      "cache_sweep_removed_total",
			Help:      "Cache files removed by the startup sweep.",
		}),
		CacheEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_agg",
			Name:      "cache_enabled",
			Help:      "1 when the response cache is enabled, 0 otherwise.",
		}),
	}
}
