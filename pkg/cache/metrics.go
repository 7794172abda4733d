package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by prefix
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webcache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"prefix"},
	)

	// CacheMisses tracks cache misses by prefix
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webcache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"prefix"},
	)

	// CacheStores tracks responses written to the cache
	CacheStores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webcache_stores_total",
			Help: "Total number of responses written to the cache",
		},
		[]string{"prefix"},
	)

	// CacheStoredBytes tracks the size of stored response bodies
	CacheStoredBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webcache_stored_bytes",
			Help:    "Size of response bodies written to the cache",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"prefix"},
	)

	// CacheCleaned tracks keys removed by a clean start
	CacheCleaned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webcache_cleaned_keys_total",
			Help: "Total number of keys deleted by a clean start",
		},
		[]string{"prefix"},
	)

	// CacheErrors tracks storage operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webcache_errors_total",
			Help: "Total number of cache storage errors",
		},
		[]string{"operation"}, // "lookup", "refresh", "store", "clean"
	)
)
