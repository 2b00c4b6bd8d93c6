package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_compute_duration_seconds",
		Help:    "Time spent computing friend recommendations for one user.",
		Buckets: prometheus.DefBuckets,
	})

	RecommendationCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_candidates",
		Help:    "Number of friend-of-friend candidates scored per computation.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	// outcome: resolved, unresolved, error, rejected
	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_requests_total",
		Help: "Forward geocoding requests sent to the upstream provider.",
	}, []string{"outcome"})

	// 0 = closed, 1 = half-open, 2 = open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state per upstream.",
	}, []string{"name"})

	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions.",
	}, []string{"name", "from", "to"})
)
