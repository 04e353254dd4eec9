// Package force implements a 2-D force-directed graph layout engine.
//
// The engine simulates a physical system over a slice of [Node] values:
// nodes repel each other ([ManyBodyForce]), linked nodes are pulled toward a
// rest length ([LinkForce]), and the whole system is pulled toward a common
// center ([CenterForce]). A [Simulation] integrates velocities and positions
// once per tick while a cooling parameter (alpha) decays toward zero; the run
// ends when alpha drops below AlphaMin or a fixed tick budget is spent.
//
// # Spatial Index
//
// Pairwise repulsion is approximated with the Barnes-Hut method. A [Quadtree]
// over the current node positions is rebuilt from scratch at the start of
// every tick. Quadrants are stored in an arena and refer to their children by
// index, so a rebuild is a reslice of the same backing array and never leaves
// stale aggregates behind.
//
// # Tick
//
// One tick is:
//
//  1. rebuild the quadtree from current positions
//  2. apply every registered force in registration order; forces only add to
//     node velocities, so positions form a consistent snapshot for the tick
//  3. integrate: velocity *= VelocityDecay, position += velocity
//     (fixed nodes are reset to their pinned position with zero velocity)
//  4. decay alpha: alpha += (AlphaTarget - alpha) * AlphaDecay
//
// # Calling Conventions
//
// [Simulation.Run] loops ticks on the calling goroutine. [Simulation.Start]
// runs the same loop on a new goroutine and reports each tick and the end of
// the run through [Handlers]. Both share [Simulation.Tick], so for identical
// inputs they produce bit-identical trajectories.
//
// # Degenerate Geometry
//
// Coincident nodes and zero-length links never produce an error. Distances are
// floored and a zero component is replaced by a tiny deterministic offset whose
// sign depends on node indices, so two identical runs break ties identically.
//
// # Usage
//
//	nodes := []force.Node{force.NewNode(0), force.NewNode(1), force.NewNode(2)}
//	force.InitializeNodes(nodes)
//
//	links := []force.Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}}
//
//	sim := force.NewSimulation(nodes, force.DefaultConfig())
//	sim.AddForce("link", force.NewLinkForce(links))
//	sim.AddForce("charge", force.NewManyBodyForce())
//	sim.AddForce("center", force.NewCenterForce(0, 0))
//
//	if err := sim.Run(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(sim.State(), sim.Ticks())
//
// A Simulation is not safe for concurrent use; independent simulations share
// no state and can run in parallel.
package force
