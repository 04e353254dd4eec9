// Package layout runs the force simulation over a node/link document.
//
// [Compute] is the single entry point used by the CLI, the HTTP server and
// the pipeline runner:
//
//  1. build simulation nodes and links from the document (pkg/graph)
//  2. place nodes (random disk or preserve-with-spiral)
//  3. register the link, charge and center forces in that order
//  4. run to convergence or for a fixed number of ticks
//  5. copy x and y back onto the document, only if the run succeeded
//
// A failed or cancelled run returns an error and leaves the document exactly
// as it was.
package layout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// Force names, in application order.
const (
	ForceLink   = "link"
	ForceCharge = "charge"
	ForceCenter = "center"
)

// Result describes a completed run.
type Result struct {
	RunID     string        `json:"run_id"`
	Nodes     int           `json:"nodes"`
	Links     int           `json:"links"`
	Ticks     int           `json:"ticks"`
	Alpha     float64       `json:"alpha"`
	State     string        `json:"state"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	CacheHit  bool          `json:"cache_hit"`
	GraphHash string        `json:"graph_hash,omitempty"`
}

// Compute lays out g in place. On error g is unmodified.
func Compute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.logger()

	nodes, links, err := graph.Build(g)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID: uuid.NewString(),
		Nodes: len(nodes),
		Links: len(links),
	}
	logger = logger.With("run", res.RunID[:8])

	sim, err := NewSimulation(nodes, links, opts)
	if err != nil {
		return nil, err
	}

	observability.Layout().OnLayoutStart(ctx, len(nodes), len(links))
	logger.Debug("simulation started", "nodes", len(nodes), "links", len(links), "mode", opts.Mode)

	start := time.Now()
	err = run(ctx, sim, opts)
	res.Elapsed = time.Since(start)
	res.Ticks = sim.Ticks()
	res.Alpha = sim.Alpha()
	res.State = sim.State().String()

	observability.Layout().OnLayoutComplete(ctx, res.State, res.Ticks, res.Elapsed, err)
	if err != nil {
		logger.Debug("simulation aborted", "ticks", res.Ticks, "err", err)
		return nil, err
	}

	if err := graph.CopyBack(sim.Nodes(), g); err != nil {
		return nil, err
	}
	logger.Debug("simulation finished",
		"state", res.State,
		"ticks", res.Ticks,
		"alpha", res.Alpha,
		"duration", res.Elapsed)
	return res, nil
}

// NewSimulation places nodes and returns a simulation with the link, charge
// and center forces registered. nodes is used in place.
func NewSimulation(nodes []force.Node, links []force.Link, opts Options) (*force.Simulation, error) {
	mode := graph.InitPreserve
	rng := graph.NewRand(opts.Seed)
	if opts.RandomInit {
		mode = graph.InitRandom
	}
	graph.InitializePositions(nodes, mode, rng)

	sim := force.NewSimulation(nodes, opts.simulationConfig())

	link := force.NewLinkForce(links)
	link.Distance = opts.LinkDistance
	link.Iterations = opts.LinkIterations
	if err := sim.AddForce(ForceLink, link); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnresolvedLink, err, "register link force")
	}

	charge := force.NewManyBodyForce()
	charge.Strength = opts.ChargeStrength
	charge.Theta = opts.Theta
	if err := sim.AddForce(ForceCharge, charge); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "register charge force")
	}

	if err := sim.AddForce(ForceCenter, force.NewCenterForce(opts.CenterX, opts.CenterY)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "register center force")
	}
	return sim, nil
}

func run(ctx context.Context, sim *force.Simulation, opts Options) error {
	if opts.Mode != ModeEvent {
		return sim.Run(ctx)
	}
	end := <-sim.Start(ctx, force.Handlers{OnTick: opts.OnTick})
	return end.Err
}
