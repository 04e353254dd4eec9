package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_layout_runs_total",
			Help: "Total number of layout runs by final state",
		},
		[]string{"state"}, // converged, iteration-limit, stopped, error
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_layout_duration_seconds",
			Help:    "Wall time of layout runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	r.LayoutTicks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_layout_ticks",
			Help:    "Ticks executed per layout run",
			Buckets: []float64{10, 50, 100, 200, 300, 500, 1000, 5000},
		},
	)

	r.LayoutNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcelayout_layout_nodes",
			Help:    "Nodes per laid-out graph",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	r.LayoutInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcelayout_layout_in_flight",
			Help: "Current number of running layouts",
		},
	)

	r.RenderTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_render_total",
			Help: "Total number of renders by format and status",
		},
		[]string{"format", "status"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcelayout_render_duration_seconds",
			Help:    "Render latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
}
