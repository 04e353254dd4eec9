package force

import (
	"errors"
	"fmt"
	"math"
)

// Default link parameters.
const (
	DefaultLinkDistance   = 30.0
	DefaultLinkIterations = 1
)

// ErrLinkEndpoint is returned by [LinkForce.Initialize] when a link refers to
// a node index outside the node set.
var ErrLinkEndpoint = errors.New("link endpoint out of range")

// LinkForce pulls linked nodes toward a rest length, like a spring without a
// compression limit.
//
// Each link's stiffness is 1/min(degree(source), degree(target)) and the
// correction is split so that the endpoint with the higher degree moves less.
// Links are relaxed Iterations times per tick in input order.
type LinkForce struct {
	Distance   float64
	Iterations int

	links     []Link
	bias      []float64
	strengths []float64
}

// NewLinkForce returns a link force over links with the default parameters.
func NewLinkForce(links []Link) *LinkForce {
	return &LinkForce{
		Distance:   DefaultLinkDistance,
		Iterations: DefaultLinkIterations,
		links:      links,
	}
}

// Links returns the links the force acts on.
func (f *LinkForce) Links() []Link { return f.links }

// Initialize validates endpoints and precomputes per-link bias and strength
// from node degrees.
func (f *LinkForce) Initialize(nodes []Node) error {
	count := make([]int, len(nodes))
	for i := range f.links {
		l := &f.links[i]
		l.Index = i
		if l.Source < 0 || l.Source >= len(nodes) {
			return fmt.Errorf("link %d source %d: %w", i, l.Source, ErrLinkEndpoint)
		}
		if l.Target < 0 || l.Target >= len(nodes) {
			return fmt.Errorf("link %d target %d: %w", i, l.Target, ErrLinkEndpoint)
		}
		count[l.Source]++
		count[l.Target]++
	}

	f.bias = make([]float64, len(f.links))
	f.strengths = make([]float64, len(f.links))
	for i, l := range f.links {
		cs, ct := float64(count[l.Source]), float64(count[l.Target])
		f.bias[i] = cs / (cs + ct)
		f.strengths[i] = 1 / math.Min(cs, ct)
	}
	return nil
}

// Apply relaxes every link toward Distance using the endpoints' predicted
// positions (position + velocity).
func (f *LinkForce) Apply(alpha float64, nodes []Node, _ *Quadtree) {
	iterations := max(f.Iterations, 1)
	for range iterations {
		for i, l := range f.links {
			src, dst := &nodes[l.Source], &nodes[l.Target]

			x := dst.X + dst.VX - src.X - src.VX
			if x == 0 {
				x = jiggle(l.Source, l.Target)
			}
			y := dst.Y + dst.VY - src.Y - src.VY
			if y == 0 {
				y = jiggle(l.Source, l.Target)
			}
			d := math.Sqrt(x*x + y*y)
			k := (d - f.Distance) / d * alpha * f.strengths[i]
			x *= k
			y *= k

			b := f.bias[i]
			if !dst.Fixed() {
				dst.VX -= x * b
				dst.VY -= y * b
			}
			if !src.Fixed() {
				src.VX += x * (1 - b)
				src.VY += y * (1 - b)
			}
		}
	}
}
