package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cane_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cane_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// EntryTransitions counts workflow steps: registered, arrival_attached, approved, rejected
	EntryTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cane_entry_transitions_total",
			Help: "Entry workflow transitions by stage",
		},
		[]string{"stage"},
	)

	// EntryRejections counts refused submissions by error code
	EntryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cane_entry_rejections_total",
			Help: "Workflow submissions refused, by stage and error code",
		},
		[]string{"stage", "code"},
	)

	ComparisonMismatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cane_comparison_mismatches",
			Help:    "Mismatching field pairs per verification comparison",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cane_cache_lookups_total",
			Help: "Redis cache lookups by result",
		},
		[]string{"result"},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cane_live_feed_clients",
			Help: "Connected websocket dashboard clients",
		},
	)
)
