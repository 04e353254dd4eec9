package force

import "math"

// Default many-body parameters.
const (
	DefaultChargeStrength = -30.0
	DefaultTheta          = 0.9
	DefaultDistanceMin    = 1.0
)

// ManyBodyForce applies mutual repulsion (negative Strength) or attraction
// (positive Strength) between all nodes using the Barnes-Hut approximation.
//
// Each node's effective strength is Strength times its Node.Strength
// multiplier. Fixed nodes exert force but are never moved by it.
type ManyBodyForce struct {
	Strength    float64
	Theta       float64 // Barnes-Hut accuracy; smaller is more exact
	DistanceMin float64 // floor on the separation used in the force law
	DistanceMax float64 // bodies farther than this are ignored

	strengths []float64
}

// NewManyBodyForce returns a repulsive force with the default parameters.
func NewManyBodyForce() *ManyBodyForce {
	return &ManyBodyForce{
		Strength:    DefaultChargeStrength,
		Theta:       DefaultTheta,
		DistanceMin: DefaultDistanceMin,
		DistanceMax: math.Inf(1),
	}
}

// Initialize sizes the per-node strength buffer.
func (f *ManyBodyForce) Initialize(nodes []Node) error {
	f.strengths = make([]float64, len(nodes))
	return nil
}

// Apply adds v += (dx, dy) * strength * alpha / d² for every body or aggregate
// the Barnes-Hut walk settles on.
func (f *ManyBodyForce) Apply(alpha float64, nodes []Node, index *Quadtree) {
	if len(f.strengths) != len(nodes) {
		f.strengths = make([]float64, len(nodes))
	}
	for i := range nodes {
		f.strengths[i] = f.Strength * nodes[i].Strength
	}
	index.Aggregate(f.strengths)

	theta2 := f.Theta * f.Theta
	distMin2 := f.DistanceMin * f.DistanceMin
	distMax2 := f.DistanceMax * f.DistanceMax
	for i := range nodes {
		n := &nodes[i]
		if n.Fixed() {
			continue
		}
		ax, ay := index.Accumulate(i, theta2, distMin2, distMax2)
		n.VX += ax * alpha
		n.VY += ay * alpha
	}
}
