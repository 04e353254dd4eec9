package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/forcelayout/pkg/cache"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/observability"
	"github.com/matzehuels/forcelayout/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different documents.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedLayout is the stored form of a layout: the laid-out document and the
// run summary.
type cachedLayout struct {
	Graph  json.RawMessage `json:"graph"`
	Result layout.Result   `json:"result"`
}

// Execute lays out g in place and renders every format in opts.Formats.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	result := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}

	layoutStart := time.Now()
	res, err := r.Layout(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = res
	result.CacheInfo.LayoutHit = res.CacheHit
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"nodes", res.Nodes,
		"links", res.Links,
		"state", res.State,
		"ticks", res.Ticks,
		"cached", res.CacheHit,
		"duration", result.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	result.CacheInfo.RenderHit = true
	for _, format := range opts.Formats {
		ropts := opts
		ropts.Render.Format = format
		data, hit, err := r.RenderWithCacheInfo(ctx, g, ropts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
		result.CacheInfo.RenderHit = result.CacheInfo.RenderHit && hit
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout lays out g in place, serving the result from the cache when an
// identical document was laid out with the same options before.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (*layout.Result, error) {
	lopts := opts.Layout
	if err := lopts.Validate(); err != nil {
		return nil, err
	}
	if lopts.Logger == nil {
		lopts.Logger = r.Logger
	}

	input, err := graph.Marshal(g)
	if err != nil {
		return nil, err
	}
	graphHash := cache.Hash(input)
	cacheKey := r.Keyer.LayoutKey(graphHash, lopts.KeyOpts())

	if !opts.Refresh {
		start := time.Now()
		if res, ok := r.cachedLayout(ctx, cacheKey, g); ok {
			res.RunID = uuid.NewString()
			res.CacheHit = true
			res.GraphHash = graphHash
			res.Elapsed = time.Since(start)
			return res, nil
		}
	}

	res, err := layout.Compute(ctx, g, lopts)
	if err != nil {
		return nil, err
	}
	res.GraphHash = graphHash

	out, err := graph.Marshal(g)
	if err != nil {
		return res, nil
	}
	if data, err := json.Marshal(cachedLayout{Graph: out, Result: *res}); err == nil {
		r.store(ctx, KeyTypeLayout, cacheKey, data, cache.TTLLayout)
	}
	return res, nil
}

// cachedLayout looks up key and, on a hit, replaces g's contents with the
// cached document. Entries that fail to decode or do not match g's shape are
// treated as misses.
func (r *Runner) cachedLayout(ctx context.Context, key string, g *graph.Graph) (*layout.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, KeyTypeLayout)
		return nil, false
	}

	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil {
		observability.Cache().OnCacheMiss(ctx, KeyTypeLayout)
		return nil, false
	}
	cached, err := graph.Unmarshal(entry.Graph)
	if err != nil || len(cached.Nodes) != len(g.Nodes) || len(cached.Links) != len(g.Links) {
		observability.Cache().OnCacheMiss(ctx, KeyTypeLayout)
		return nil, false
	}

	observability.Cache().OnCacheHit(ctx, KeyTypeLayout)
	*g = *cached
	return &entry.Result, true
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return data, err
}

// RenderWithCacheInfo draws a laid-out g in opts.Render.Format with caching
// and reports whether the artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) ([]byte, bool, error) {
	ropts := opts.Render
	if err := ropts.Validate(); err != nil {
		return nil, false, err
	}

	laidOut, err := graph.Marshal(g)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.RenderKey(cache.Hash(laidOut), ropts.KeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, KeyTypeRender)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, KeyTypeRender)
	}

	data, err := render.Render(ctx, g, ropts)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, KeyTypeRender, cacheKey, data, cache.TTLRender)
	return data, false, nil
}

// store writes an entry. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
