package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"layer"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses by layer
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"layer"},
	)

	// CacheExpired tracks entries that were found but had outlived the TTL
	CacheExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_cache_expired_total",
			Help: "Total number of expired cache entries removed on read",
		},
		[]string{"layer"},
	)

	// CacheEntries tracks the number of entries held in memory
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mcp_cache_entries",
			Help: "Current number of entries in the response cache",
		},
		[]string{"layer"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear", "len"
	)
)
