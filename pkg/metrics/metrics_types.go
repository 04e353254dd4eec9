// Package metrics exposes Prometheus metrics for layout runs, the result
// cache and the HTTP API.
//
// A [Registry] owns its own prometheus.Registry, so tests can create fresh
// instances without colliding on metric names. [Registry.Install] registers
// it as the process-wide observability hooks.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric.
type Registry struct {
	// Layout Metrics
	LayoutRunsTotal *prometheus.CounterVec
	LayoutDuration  prometheus.Histogram
	LayoutTicks     prometheus.Histogram
	LayoutNodes     prometheus.Histogram
	LayoutInFlight  prometheus.Gauge
	RenderTotal     *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.HistogramVec

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPErrorsTotal      *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initLayoutMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
