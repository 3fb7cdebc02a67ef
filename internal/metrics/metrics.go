package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LocationAppends counts append attempts by outcome ("success" or an error kind).
	LocationAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_log_appends_total",
			Help: "Total number of location log appends by outcome",
		},
		[]string{"source", "outcome"},
	)

	LocationAppendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "location_log_append_duration_seconds",
			Help:    "Duration of location log appends in seconds, including the store round trips",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	LocationAppendRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "location_log_append_retries_total",
			Help: "Total number of appends retried after a version conflict",
		},
	)

	GeoIPLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_lookups_total",
			Help: "Total number of IP geolocation lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitBreakerState: 0 = closed, 1 = half-open, 2 = open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by result",
		},
		[]string{"name", "result"},
	)
)
