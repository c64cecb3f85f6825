// Package metrics registers the Prometheus collectors for the payment core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts payment core operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paycore_operations_total",
			Help: "Total payment core operations",
		},
		[]string{"operation", "outcome"},
	)

	// OperationDuration tracks operation latency.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paycore_operation_duration_seconds",
			Help:    "Payment core operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// IdempotencyHits counts requests answered from the idempotency store.
	IdempotencyHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paycore_idempotency_hits_total",
			Help: "Requests short-circuited by a stored idempotent result",
		},
		[]string{"operation"},
	)

	// IdempotencySwept counts entries removed by the expiry sweeper.
	IdempotencySwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paycore_idempotency_swept_total",
			Help: "Expired idempotency records removed by the sweeper",
		},
	)

	// CircuitBreakerState tracks the processor breaker (0=closed, 1=open, 2=half-open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paycore_circuit_breaker_state",
			Help: "Processor circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	// AuditDropped counts audit entries that failed to append.
	AuditDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paycore_audit_dropped_total",
			Help: "Audit entries that could not be appended",
		},
	)
)
