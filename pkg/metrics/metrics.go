package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// EmailsSent counts outbound code emails by kind and result.
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_emails_sent_total",
			Help: "Total number of verification and reset emails dispatched",
		},
		[]string{"kind", "result"},
	)

	// GeoLookups counts geolocation lookups by outcome (hit|miss|error|local).
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_geo_lookups_total",
			Help: "Total number of IP geolocation lookups",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accountd_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
