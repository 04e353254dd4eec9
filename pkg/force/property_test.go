package force

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomGraph returns n nodes with random positions, about two links per
// node, and every fourth node pinned.
func randomGraph(n int, seed uint64) ([]Node, []Link) {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = NewNode(i)
		x, y := rng.Float64()*200-100, rng.Float64()*200-100
		if i%4 == 3 {
			nodes[i].Fix(x, y)
			continue
		}
		nodes[i].X, nodes[i].Y = x, y
	}
	var links []Link
	for i := 1; i < n; i++ {
		links = append(links, Link{Source: rng.IntN(i), Target: i})
		if rng.IntN(2) == 0 {
			links = append(links, Link{Source: rng.IntN(n), Target: rng.IntN(n)})
		}
	}
	return nodes, links
}

func TestSimulationProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("fixed nodes never move", prop.ForAll(
		func(n int, seed uint64) bool {
			nodes, links := randomGraph(n, seed)
			want := make([][2]float64, n)
			for i := range nodes {
				want[i] = [2]float64{nodes[i].X, nodes[i].Y}
			}
			cfg := DefaultConfig()
			cfg.MaxTicks = 40
			sim := newDefaultSimulation(t, nodes, links, cfg)
			if err := sim.Run(context.Background()); err != nil {
				return false
			}
			for i := range nodes {
				if !nodes[i].Fixed() {
					continue
				}
				if nodes[i].X != want[i][0] || nodes[i].Y != want[i][1] || nodes[i].VX != 0 || nodes[i].VY != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 60),
		gen.UInt64(),
	))

	properties.Property("positions stay finite", prop.ForAll(
		func(n int, seed uint64) bool {
			nodes, links := randomGraph(n, seed)
			cfg := DefaultConfig()
			cfg.MaxTicks = 40
			sim := newDefaultSimulation(t, nodes, links, cfg)
			if err := sim.Run(context.Background()); err != nil {
				return false
			}
			for _, nd := range nodes {
				if math.IsNaN(nd.X) || math.IsNaN(nd.Y) || math.IsInf(nd.X, 0) || math.IsInf(nd.Y, 0) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 60),
		gen.UInt64(),
	))

	properties.Property("tick budget is exact", prop.ForAll(
		func(ticks int) bool {
			nodes, links := ring(8)
			cfg := DefaultConfig()
			cfg.MaxTicks = ticks
			sim := newDefaultSimulation(t, nodes, links, cfg)
			_ = sim.Run(context.Background())
			return sim.Ticks() == ticks && sim.State() == StateIterationLimitReached
		},
		gen.IntRange(1, 400),
	))

	properties.Property("alpha decays monotonically", prop.ForAll(
		func(decay float64) bool {
			nodes, links := ring(4)
			cfg := DefaultConfig()
			cfg.AlphaDecay = decay
			cfg.MaxTicks = 50
			sim := newDefaultSimulation(t, nodes, links, cfg)
			prev := sim.Alpha()
			for range 50 {
				sim.Tick()
				if sim.Alpha() > prev {
					return false
				}
				prev = sim.Alpha()
			}
			return true
		},
		gen.Float64Range(0.001, 0.5),
	))

	properties.TestingRun(t)
}
