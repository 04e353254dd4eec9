// Package pipeline runs the layout → render pipeline with result caching.
//
// Both the CLI and the HTTP server go through a [Runner] so that cache keys,
// hooks and logging behave identically for every entry point.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: run the force simulation and write x/y onto the document
//  2. Render: draw the laid-out document (SVG, DOT, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Caching
//
// Layouts are keyed by the content hash of the input document plus every
// option that affects positions. Renders are keyed by the hash of the
// laid-out document plus the render options. A layout cache hit replaces the
// document's contents with the cached result, exactly as a fresh run would
// have; the result reports CacheHit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	defer runner.Close()
//
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{"svg"}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/render"
)

// Cache key types reported to the cache hooks.
const (
	KeyTypeLayout = "layout"
	KeyTypeRender = "render"
)

// Options configures a pipeline execution.
type Options struct {
	Layout layout.Options
	Render render.Options

	// Formats lists the artifacts Execute renders. Render.Format is
	// overridden per entry. Empty means layout only.
	Formats []string

	// Refresh skips cache reads. Results are still written.
	Refresh bool
}

// DefaultOptions returns default layout and render options with no formats.
func DefaultOptions() Options {
	return Options{
		Layout: layout.DefaultOptions(),
		Render: render.DefaultOptions(),
	}
}

// Result contains the output of a pipeline execution.
type Result struct {
	Graph     *graph.Graph
	Layout    *layout.Result
	Artifacts map[string][]byte
	CacheInfo CacheInfo
	Stats     Stats
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// Stats holds stage timings.
type Stats struct {
	LayoutTime time.Duration
	RenderTime time.Duration
}
