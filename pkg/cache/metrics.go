package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh cache hits by store kind (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_hits_total",
			Help: "Total number of content cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_cache_misses_total",
			Help: "Total number of content cache misses",
		},
	)

	// NotModifiedResponses tracks 304 revalidation confirmations
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_cache_revalidated_total",
			Help: "Total number of 304 Not Modified revalidations",
		},
	)

	// StaleServed tracks responses served from stale cache after a
	// transport failure
	StaleServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_cache_stale_served_total",
			Help: "Total number of responses served from stale cache on transport failure",
		},
	)

	// storeErrors tracks cache backend operation errors
	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_store_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "put", "clear", "stats"
	)
)
