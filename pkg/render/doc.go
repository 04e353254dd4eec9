// Package render draws laid-out graphs as node-link diagrams.
//
// # Overview
//
// Layout writes x and y onto every node record. This package turns such a
// graph into Graphviz DOT with every node pinned at its computed position
// (pos="x,y!") and hands it to the neato engine, which only routes edges and
// draws. The result matches the simulation's geometry exactly.
//
// # Usage
//
//	g, _ := graph.ReadFile("graph.json")
//	_, _ = layout.Compute(ctx, g, layout.DefaultOptions())
//
//	svg, err := render.Render(ctx, g, render.DefaultOptions())
//
// # Formats
//
//   - svg: rendered in-process by [github.com/goccy/go-graphviz]
//   - dot: the generated DOT source, no Graphviz involved
//   - png, pdf: the SVG converted by the external rsvg-convert tool
//
// Simulation coordinates grow downward; DOT coordinates grow upward, so y is
// negated on the way out.
package render
