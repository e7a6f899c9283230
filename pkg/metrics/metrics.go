package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogQueries counts catalog calls by operation (list|count), kind,
	// mode (catalog|enumeration) and result (success|error|unsupported).
	CatalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbnav_catalog_queries_total",
			Help: "Total number of catalog queries",
		},
		[]string{"operation", "kind", "mode", "result"},
	)

	// CatalogQueryDuration measures catalog call latency.
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbnav_catalog_query_duration_seconds",
			Help:    "Catalog query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "mode"},
	)

	// TreeNodes observes how many nodes a rendered navigation tree holds.
	TreeNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dbnav_tree_nodes",
			Help:    "Number of nodes in rendered navigation trees",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbnav_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
