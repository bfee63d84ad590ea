// Package metrics exposes counters of the EDAG service for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOk           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeConflict     = "conflict"
	OutcomeUndetermined = "undetermined"
	OutcomeInvalid      = "invalid"
)

// Metrics records outcomes of service operations.
//
// A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	collisions prometheus.Counter
}

// New registers the metrics to reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kickplate",
			Name:      "edag_operations_total",
			Help:      "Total EDAG service operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kickplate",
			Name:      "edag_operation_duration_seconds",
			Help:      "EDAG service operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"operation"}),

		collisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kickplate",
			Name:      "edagrun_name_collisions_total",
			Help:      "Total conflicts on creating EDAGRuns with generated names",
		}),
	}
}

// Observe records an operation which took d and ended with outcome.
func (m *Metrics) Observe(operation string, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// RunNameCollided records a conflict on creating an EDAGRun.
func (m *Metrics) RunNameCollided() {
	if m == nil {
		return
	}
	m.collisions.Inc()
}
