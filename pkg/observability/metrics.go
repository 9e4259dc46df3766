// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the listd service.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listd_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listd_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthFailuresTotal counts rejected requests at the authentication gate,
	// by reason (missing_credential, invalid_token).
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listd_auth_failures_total",
			Help: "Authentication gate rejections",
		},
		[]string{"reason"},
	)

	// AuthzDeniedTotal counts ownership checks that resolved to not-found,
	// by resource type (list, task).
	AuthzDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listd_authz_denied_total",
			Help: "Ownership checks resolved to not found",
		},
		[]string{"resource"},
	)

	// InsightRequestsTotal counts calls to the text-generation backend by status.
	InsightRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listd_insight_requests_total",
			Help: "Text-generation backend requests",
		},
		[]string{"status"},
	)

	// InsightLatency records text-generation backend latency in seconds.
	InsightLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listd_insight_latency_seconds",
			Help:    "Text-generation backend latency",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		AuthzDeniedTotal,
		InsightRequestsTotal,
		InsightLatency,
	)
}
