// Package observability holds the Prometheus metrics for the backend.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconcile outcome labels.
const (
	OutcomeMatched   = "matched"
	OutcomeStored    = "stored"
	OutcomePotential = "potential"
)

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	reconcileOutcomes *prometheus.CounterVec
	importErrors      prometheus.Counter
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in
// tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		reconcileOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pockettrack_reconcile_outcomes_total",
				Help: "Reconciliation outcomes per incoming bank transaction.",
			},
			[]string{"outcome"},
		),
		importErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pockettrack_import_errors_total",
				Help: "Bank-feed records that failed to process.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pockettrack_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pockettrack_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// IncrOutcome increments the reconcile outcome counter.
// Safe on a nil receiver so metrics stay optional in tests.
func (m *Metrics) IncrOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reconcileOutcomes.WithLabelValues(outcome).Inc()
}

// IncrImportError increments the import error counter.
func (m *Metrics) IncrImportError() {
	if m == nil {
		return
	}
	m.importErrors.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}
