// Package pkg provides the core libraries for forcelayout.
//
// # Overview
//
// Forcelayout positions the nodes of a node/link graph with a 2-D force
// simulation: links act as springs, every pair of nodes repels (approximated
// with a Barnes-Hut quadtree), and a centering force keeps the layout around
// a chosen point. Alpha cools each tick until the system settles.
//
// # Architecture
//
// The typical data flow:
//
//	JSON graph document
//	         ↓
//	    [graph] package (decode, resolve links, initial placement)
//	         ↓
//	    [force] package (simulation ticks)
//	         ↓
//	    [layout] package (orchestration, write-back on success)
//	         ↓
//	    [render] package (optional SVG/DOT/PNG/PDF drawing)
//
// # Quick Start
//
//	g, _ := graph.ReadFile("graph.json")
//	res, err := layout.Compute(ctx, g, layout.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.State, res.Ticks)
//	_ = graph.WriteFile("graph.json", g, "")
//
// # Main Packages
//
// ## Simulation
//
// [force] - Nodes, links, the quadtree, the link, many-body and center forces,
// and the [force.Simulation] driver with its synchronous and event-driven
// calling conventions.
//
// [graph] - The JSON document model. Unknown fields on the document, its
// nodes and its links are preserved byte for byte.
//
// [layout] - One call from document to positions. Validates options, builds
// the simulation, runs it and copies x/y back.
//
// ## Infrastructure
//
// [pipeline] - Layout and render with result caching, shared by the CLI and
// the HTTP server.
//
// [cache] - File, Redis and null cache backends plus cache key derivation.
//
// [config] - TOML/YAML configuration files.
//
// [server] - HTTP API over the pipeline.
//
// [metrics] - Prometheus implementation of the [observability] hooks.
//
// [errors] - Coded errors shared by every entry point.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/force/...    # Specific package
//	go test -run Example       # Examples only
//
// [force]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/force
// [force.Simulation]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/force#Simulation
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/server
// [metrics]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/errors
//
// [render]: https://pkg.go.dev/github.com/matzehuels/forcelayout/pkg/render
package pkg
