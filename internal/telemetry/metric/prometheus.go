package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakewatch"

var (
	// RequestsTotal counts requests by first path segment, method and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"resource", "method", "status"},
	)

	// RequestDuration observes request latency in seconds.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)

	// RequestsInFlight is the number of requests being served.
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)

	// RateLimitRejects counts requests refused by the rate limiter.
	RateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejects_total",
			Help:      "Total number of requests rejected due to rate limiting",
		},
	)

	// PanicRecoveries counts panics recovered in handlers.
	PanicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panic_recoveries_total",
			Help:      "Total number of panics recovered in HTTP handlers",
		},
	)

	// TokensIssued counts tokens created by POST /tokens.
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of tokens issued",
		},
	)

	// SnapshotLoads counts snapshot reads by result: cached, ok, missing, corrupt.
	SnapshotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Total number of validator snapshot loads by result",
		},
		[]string{"result"},
	)

	// SnapshotRebuilds counts rebuild runs by kind (scheduled, adhoc) and result.
	SnapshotRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_rebuilds_total",
			Help:      "Total number of snapshot rebuild runs",
		},
		[]string{"kind", "result"},
	)

	// SnapshotEntries is the number of validators in the last loaded snapshot.
	SnapshotEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_entries",
			Help:      "Number of validators in the last loaded snapshot",
		},
	)
)

// Registerer is where storage engines register their collectors.
func Registerer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServeMux returns a mux serving Handler at /metrics.
func NewServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return mux
}
