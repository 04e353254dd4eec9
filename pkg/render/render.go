package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcelayout/pkg/cache"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatDOT, FormatPNG, FormatPDF}

// Drawing defaults.
const (
	DefaultNodeSize = 8.0
	DefaultScale    = 1.0
)

var validate = errors.NewValidator()

// Options configures rendering.
type Options struct {
	Format string `json:"format" toml:"format" yaml:"format" validate:"oneof=svg dot png pdf"`

	// NodeSize is the node diameter in layout units.
	NodeSize float64 `json:"node_size" toml:"node_size" yaml:"node_size" validate:"finite,gt=0"`

	// Scale multiplies layout coordinates before drawing.
	Scale float64 `json:"scale" toml:"scale" yaml:"scale" validate:"finite,gt=0"`

	// ShowLabels draws each node's id next to it.
	ShowLabels bool `json:"show_labels" toml:"show_labels" yaml:"show_labels"`
}

// DefaultOptions returns SVG output at unit scale without labels.
func DefaultOptions() Options {
	return Options{
		Format:   FormatSVG,
		NodeSize: DefaultNodeSize,
		Scale:    DefaultScale,
	}
}

// Validate checks the options and returns an INVALID_CONFIG error.
func (o *Options) Validate() error {
	return errors.FromValidation(validate.Struct(o))
}

// KeyOpts returns the options that determine the artifact, for cache keys.
func (o *Options) KeyOpts() cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:    o.Format,
		NodeSize:  o.NodeSize,
		Scale:     o.Scale,
		ShowLabel: o.ShowLabels,
	}
}

// pointsPerInch is the DOT unit conversion: pos is read in points once
// inputscale is set to this value, while widths are always inches.
const pointsPerInch = 72.0

// ToDOT converts a laid-out graph to undirected Graphviz DOT source. Every
// node must carry a numeric x and y.
func ToDOT(g *graph.Graph, opts Options) (string, error) {
	nodes, links, err := graph.Build(g)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  inputscale=%g;\n", pointsPerInch)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fillcolor=\"#4c78a8\", color=white, fixedsize=true, width=%s, label=\"\", fontsize=10];\n",
		fmtFloat(opts.NodeSize*opts.Scale/pointsPerInch))
	buf.WriteString("  edge [color=\"#999999\"];\n")
	buf.WriteString("\n")

	for i, n := range nodes {
		if !n.HasPosition() {
			return "", errors.New(errors.ErrCodeMalformedInput, "node %d has no position", i)
		}
		attrs := []string{fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X*opts.Scale), fmtFloat(-n.Y*opts.Scale))}
		if opts.ShowLabels {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", nodeLabel(g.Nodes[i], i)))
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range links {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", l.Source, l.Target)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// nodeLabel returns the node's id as written in the input, or its index.
func nodeLabel(rec graph.Record, i int) string {
	raw, ok := rec[graph.FieldID]
	if !ok || string(raw) == "null" {
		return strconv.Itoa(i)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func fmtFloat(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Render draws a laid-out graph in opts.Format.
func Render(ctx context.Context, g *graph.Graph, opts Options) (data []byte, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	hooks := observability.Layout()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	}()

	dot, err := ToDOT(g, opts)
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch opts.Format {
	case FormatPNG:
		return ToPNG(svg, 1)
	case FormatPDF:
		return ToPDF(svg)
	default:
		return svg, nil
	}
}

// RenderSVG draws DOT source with the neato engine, which keeps pinned node
// positions, and returns the SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}
