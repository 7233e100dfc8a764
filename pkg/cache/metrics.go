package cache

import (
	"github.com/Sternrassler/flickr-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend labels used in metrics.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQL      = "sql"
	BackendPostgres = "postgres"
	BackendNATS     = "nats"
)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickr_cache_hits_total",
			Help: "Total number of Flickr response cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses (absent or expired) by backend
	CacheMisses = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickr_cache_misses_total",
			Help: "Total number of Flickr response cache misses",
		},
		[]string{"backend"},
	)

	// CacheStoredBytes tracks bytes written to the cache
	CacheStoredBytes = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickr_cache_stored_bytes_total",
			Help: "Total bytes of response data written to the cache",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickr_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "delete", "prune"
	)
)
