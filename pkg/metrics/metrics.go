package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// Label values for outcomes that carry no state of their own.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Handler returns an HTTP handler serving this registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the process-wide layout, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetLayoutHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// RecordLayout records a finished layout run.
func (r *Registry) RecordLayout(state string, ticks int, duration time.Duration) {
	r.LayoutRunsTotal.WithLabelValues(state).Inc()
	r.LayoutDuration.Observe(duration.Seconds())
	r.LayoutTicks.Observe(float64(ticks))
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// OnLayoutStart implements observability.LayoutHooks.
func (r *Registry) OnLayoutStart(_ context.Context, nodeCount, _ int) {
	r.LayoutInFlight.Inc()
	r.LayoutNodes.Observe(float64(nodeCount))
}

// OnLayoutComplete implements observability.LayoutHooks. Failed runs are
// counted under the "error" state.
func (r *Registry) OnLayoutComplete(_ context.Context, state string, ticks int, duration time.Duration, err error) {
	r.LayoutInFlight.Dec()
	if err != nil {
		state = statusError
	}
	r.RecordLayout(state, ticks, duration)
}

// OnRenderStart implements observability.LayoutHooks.
func (r *Registry) OnRenderStart(context.Context, string) {}

// OnRenderComplete implements observability.LayoutHooks.
func (r *Registry) OnRenderComplete(_ context.Context, format string, duration time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	r.RenderTotal.WithLabelValues(format, status).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (r *Registry) OnResponse(_ context.Context, method, route string, status int, duration time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.RecordHTTPRequest(method, route, status, duration)
}

// OnError implements observability.HTTPHooks.
func (r *Registry) OnError(_ context.Context, method, route string, err error) {
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	r.HTTPErrorsTotal.WithLabelValues(method, route, code).Inc()
}

var (
	_ observability.LayoutHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)
