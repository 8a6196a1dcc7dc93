package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks responses replayed from a backend
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"backend"}, // "memory", "redis", "badger"
	)

	// CacheMisses tracks lookups that ran the handler
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"backend"},
	)

	// CacheStores tracks responses written to a backend
	CacheStores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_cache_stores_total",
			Help: "Total number of responses stored",
		},
		[]string{"backend"},
	)

	// CacheSkippedErrors tracks error responses not stored because
	// cache errors is disabled
	CacheSkippedErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restext_cache_skipped_errors_total",
			Help: "Total number of error responses not stored",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restext_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "open", "get", "set", "delete"
	)
)
