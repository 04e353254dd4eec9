package force

// CenterForce translates all free nodes so that their mean position moves
// toward (X, Y). The correction is rigid and not scaled by alpha.
type CenterForce struct {
	X, Y     float64
	Strength float64
}

// NewCenterForce returns a centering force toward (x, y) with strength 1.
func NewCenterForce(x, y float64) *CenterForce {
	return &CenterForce{X: x, Y: y, Strength: 1}
}

// Initialize is a no-op; the force keeps no per-node state.
func (f *CenterForce) Initialize([]Node) error { return nil }

// Apply subtracts (mean - center) * Strength from every free node's velocity.
func (f *CenterForce) Apply(_ float64, nodes []Node, _ *Quadtree) {
	var sx, sy float64
	free := 0
	for i := range nodes {
		if nodes[i].Fixed() {
			continue
		}
		sx += nodes[i].X
		sy += nodes[i].Y
		free++
	}
	if free == 0 {
		return
	}
	dx := (sx/float64(free) - f.X) * f.Strength
	dy := (sy/float64(free) - f.Y) * f.Strength
	for i := range nodes {
		if nodes[i].Fixed() {
			continue
		}
		nodes[i].VX -= dx
		nodes[i].VY -= dy
	}
}
