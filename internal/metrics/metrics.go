// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scopepad_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scopepad_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scopepad_users_registered_total",
			Help: "Total users registered",
		},
	)

	FilesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scopepad_files_saved_total",
			Help: "Total files saved",
		},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scopepad_messages_sent_total",
			Help: "Total mirrored message pairs written",
		},
	)

	TokensRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scopepad_tokens_refreshed_total",
			Help: "Total sliding-session token replacements issued",
		},
	)
)
