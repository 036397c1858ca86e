package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements the per-operation envelope every service records
// through, backed by a dedicated Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	outcomes  *prometheus.CounterVec
}

// NewMetrics builds the registry with Go runtime and process collectors
// plus the operation envelope series.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stride",
			Name:      "operation_attempts_total",
			Help:      "Operations attempted, by operation and service.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stride",
			Name:      "operation_successes_total",
			Help:      "Operations completed successfully, by operation and service.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stride",
			Name:      "operation_failures_total",
			Help:      "Operations that returned an error, by operation and service.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stride",
			Name:      "operation_duration_seconds",
			Help:      "Operation latency, by operation and service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stride",
			Subsystem: "league",
			Name:      "finalize_outcomes_total",
			Help:      "Weekly outcomes written by the finalize engine, by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(m.attempts, m.successes, m.failures, m.durations, m.outcomes)
	return m
}

// Registry exposes the registry for router middleware that wants to
// register its own series.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordOperationAttempt(ctx context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *Metrics) RecordOperationSuccess(ctx context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *Metrics) RecordOperationFailure(ctx context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *Metrics) RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *Metrics) RecordFinalizeOutcomes(ctx context.Context, epochKey string, promoted, demoted, stayed int) {
	m.outcomes.WithLabelValues("promoted").Add(float64(promoted))
	m.outcomes.WithLabelValues("demoted").Add(float64(demoted))
	m.outcomes.WithLabelValues("stayed").Add(float64(stayed))
}
