// Package middleware provides cross-cutting concerns for the tally
// engines: Prometheus metrics and OpenTelemetry tracing, applied as
// wrappers so the engines themselves stay pure.
package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// Verify interface compliance at compile time.
var (
	_ ports.MetricsCollector = (*PrometheusMetrics)(nil)
	_ ports.Tally            = (*MetricsTally)(nil)
)

// PrometheusMetrics implements ports.MetricsCollector using Prometheus.
// It tracks tally run counts and wall-clock durations by method and
// outcome status.
type PrometheusMetrics struct {
	tallyRuns     *prometheus.CounterVec
	tallyDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and
// registers its metrics with the given registerer. A nil registerer
// uses the global default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		tallyRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_runs_total",
				Help: "Total number of tally invocations by method and outcome.",
			},
			[]string{"method", "status"},
		),
		tallyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_duration_seconds",
				Help:    "Wall-clock duration of tally computations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

// RecordTally implements ports.MetricsCollector.
func (pm *PrometheusMetrics) RecordTally(method, status string, seconds float64) {
	pm.tallyRuns.WithLabelValues(method, status).Inc()
	pm.tallyDuration.WithLabelValues(method, status).Observe(seconds)
}

// MetricsTally wraps a tally and records every invocation with the
// configured collector.
type MetricsTally struct {
	next      ports.Tally
	collector ports.MetricsCollector
}

// NewMetricsTally wraps the given tally with metrics recording.
func NewMetricsTally(next ports.Tally, collector ports.MetricsCollector) *MetricsTally {
	return &MetricsTally{next: next, collector: collector}
}

// WithMetrics returns a middleware function that wraps tallies with
// metrics recording, for use with the suite runner.
func WithMetrics(collector ports.MetricsCollector) func(ports.Tally) ports.Tally {
	return func(next ports.Tally) ports.Tally {
		return NewMetricsTally(next, collector)
	}
}

// Name implements ports.Tally.
func (m *MetricsTally) Name() string { return m.next.Name() }

// Validate implements ports.Tally.
func (m *MetricsTally) Validate() error { return m.next.Validate() }

// Tally implements ports.Tally, recording outcome and duration.
func (m *MetricsTally) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	start := time.Now()
	result, err := m.next.Tally(ctx, e)

	status := "success"
	if err != nil {
		status = "error"
	}
	m.collector.RecordTally(m.next.Name(), status, time.Since(start).Seconds())
	return result, err
}
