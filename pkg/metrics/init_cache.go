package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCacheMetrics() {
	r.CacheHitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"type"}, // layout, render
	)

	r.CacheMissesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"type"},
	)

	r.CacheSetBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcelayout_cache_set_bytes",
			Help:    "Size of cache entries written in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"type"},
	)
}
