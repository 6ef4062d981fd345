package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records attempt/success/failure/duration for service
// operations. It satisfies the per-module Metrics interfaces declared next to
// each service.
type OperationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewOperationMetrics registers the operation collectors on reg under the
// given subsystem.
func NewOperationMetrics(reg prometheus.Registerer, subsystem string) *OperationMetrics {
	m := newOperationMetrics(subsystem)
	reg.MustRegister(m.attempts, m.successes, m.failures, m.durations)
	return m
}

// NewNoOpOperationMetrics returns collectors that are never registered, so
// tests can run services without a Prometheus registry.
func NewNoOpOperationMetrics() *OperationMetrics {
	return newOperationMetrics("test")
}

func newOperationMetrics(subsystem string) *OperationMetrics {
	m := &OperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pelada",
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pelada",
			Subsystem: subsystem,
			Name:      "operation_successes_total",
			Help:      "Service operations that completed successfully.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pelada",
			Subsystem: subsystem,
			Name:      "operation_failures_total",
			Help:      "Service operations that failed.",
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pelada",
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	return m
}

func (m *OperationMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *OperationMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(operation).Inc()
}

func (m *OperationMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *OperationMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.durations.WithLabelValues(operation).Observe(d.Seconds())
}
