package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hbp_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	AllocatorAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hbp_allocator_attempts",
			Help:    "Room candidates tried per successful allocation",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	AllocatorExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hbp_allocator_exhausted_total",
			Help: "Allocations that ran out of attempts",
		},
	)

	ReconcileApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hbp_reconcile_applied_total",
			Help: "Payment reconciliations that transitioned a booking to PAID",
		},
	)

	ReconcileNoop = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hbp_reconcile_noop_total",
			Help: "Payment reconciliations that were already applied",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hbp_rabbit_publish_retries_total",
			Help: "Total rabbit publish retries",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hbp_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
