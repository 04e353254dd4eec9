package force

// Force accumulates acceleration into node velocities.
//
// Initialize is called when the force is registered with a Simulation and
// again whenever the node set is replaced. Apply is called once per tick with
// the current alpha and the quadtree built from the positions at the start of
// that tick. Apply must only modify velocities.
type Force interface {
	Initialize(nodes []Node) error
	Apply(alpha float64, nodes []Node, index *Quadtree)
}
