package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks responses served from a fresh entry
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tba_cache_hits_total",
			Help: "Total number of TBA responses served from cache",
		},
	)

	// CacheMisses tracks lookups without any stored entry
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tba_cache_misses_total",
			Help: "Total number of TBA cache misses",
		},
	)

	// ConditionalRequestsSent tracks revalidation requests of stale entries
	ConditionalRequestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tba_conditional_requests_total",
			Help: "Total number of conditional TBA requests sent",
		},
	)

	// NotModifiedResponses tracks 304 Not Modified responses
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tba_304_responses_total",
			Help: "Total number of TBA 304 Not Modified responses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tba_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
