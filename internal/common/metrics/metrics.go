// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DealsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deals_expired_total",
			Help: "Total number of deals deactivated by the expiration sweep",
		},
	)

	ReconcilerSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_sweeps_total",
			Help: "Total number of expiration sweeps by outcome",
		},
		[]string{"status"},
	)

	ReconcilerSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciler_sweep_duration_seconds",
			Help:    "Duration of expiration sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NearbySearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_search_duration_seconds",
			Help:    "Duration of nearby vendor searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	NearbySearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nearby_search_results",
			Help:    "Number of vendors returned per nearby search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	CategoryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "category_cache_lookups_total",
			Help: "Category name cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
