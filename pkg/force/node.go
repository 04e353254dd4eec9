package force

import "math"

const (
	// InitialRadius is the radius scale of the phyllotaxis spiral used to
	// place nodes that have no position.
	InitialRadius = 10.0

	// jiggleMagnitude is the offset substituted for an exactly zero
	// separation component.
	jiggleMagnitude = 1e-6
)

// initialAngle is the golden angle, which spreads successive spiral points
// without any two of them lining up.
var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Node is the mutable simulation state of one graph vertex.
//
// X and Y are NaN until a position is assigned. When both FX and FY are
// non-nil the node is fixed: integration resets it to (*FX, *FY) every tick
// and no force changes its velocity.
type Node struct {
	Index int // Stable 0-based identity (input order)

	X, Y   float64 // Position
	VX, VY float64 // Velocity

	FX, FY *float64 // Fixed position override

	// Strength multiplies the many-body strength for this node.
	// NewNode sets it to 1; zero removes the node's charge.
	Strength float64
}

// NewNode returns a node with an undefined position and a strength multiplier of 1.
func NewNode(index int) Node {
	return Node{Index: index, X: math.NaN(), Y: math.NaN(), Strength: 1}
}

// Fixed reports whether the node is pinned to a fixed position.
func (n *Node) Fixed() bool { return n.FX != nil && n.FY != nil }

// Fix pins the node at (x, y).
func (n *Node) Fix(x, y float64) {
	n.FX, n.FY = &x, &y
	n.X, n.Y = x, y
	n.VX, n.VY = 0, 0
}

// Unfix releases a pinned node.
func (n *Node) Unfix() { n.FX, n.FY = nil, nil }

// HasPosition reports whether both coordinates are defined.
func (n *Node) HasPosition() bool { return !math.IsNaN(n.X) && !math.IsNaN(n.Y) }

// Link connects two nodes by index.
type Link struct {
	Index  int
	Source int
	Target int
}

// Phyllotaxis returns the i-th point of the default placement spiral.
// Points are pairwise distinct and have roughly uniform density.
func Phyllotaxis(i int) (x, y float64) {
	r := InitialRadius * math.Sqrt(0.5+float64(i))
	a := float64(i) * initialAngle
	return r * math.Cos(a), r * math.Sin(a)
}

// InitializeNodes assigns indices and resolves undefined state: fixed nodes
// move to their pinned position, nodes without a position are placed on the
// phyllotaxis spiral, and NaN velocities become zero.
func InitializeNodes(nodes []Node) {
	for i := range nodes {
		n := &nodes[i]
		n.Index = i
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if !n.HasPosition() {
			n.X, n.Y = Phyllotaxis(i)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
}

// jiggle returns a tiny non-zero offset for node i separated by exactly zero
// from node j along one axis. Pairs get opposite signs so coincident nodes
// separate; with no partner (j < 0) the sign follows the parity of i.
func jiggle(i, j int) float64 {
	if j >= 0 {
		if i < j {
			return -jiggleMagnitude
		}
		return jiggleMagnitude
	}
	if i%2 == 0 {
		return jiggleMagnitude
	}
	return -jiggleMagnitude
}
