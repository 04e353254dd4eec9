package force

import (
	"context"
	"math"
	"testing"
)

// nodesAt returns free nodes at the given (x, y) pairs.
func nodesAt(coords ...float64) []Node {
	nodes := make([]Node, len(coords)/2)
	for i := range nodes {
		nodes[i] = NewNode(i)
		nodes[i].X, nodes[i].Y = coords[2*i], coords[2*i+1]
	}
	return nodes
}

// ring returns n unpositioned nodes linked in a cycle.
func ring(n int) ([]Node, []Link) {
	nodes := make([]Node, n)
	links := make([]Link, n)
	for i := range nodes {
		nodes[i] = NewNode(i)
		links[i] = Link{Source: i, Target: (i + 1) % n}
	}
	return nodes, links
}

func newDefaultSimulation(t *testing.T, nodes []Node, links []Link, cfg Config) *Simulation {
	t.Helper()
	sim := NewSimulation(nodes, cfg)
	if err := sim.AddForce("link", NewLinkForce(links)); err != nil {
		t.Fatalf("AddForce(link): %v", err)
	}
	if err := sim.AddForce("charge", NewManyBodyForce()); err != nil {
		t.Fatalf("AddForce(charge): %v", err)
	}
	if err := sim.AddForce("center", NewCenterForce(0, 0)); err != nil {
		t.Fatalf("AddForce(center): %v", err)
	}
	return sim
}

func dist(a, b Node) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestDefaultScheduleTerminates(t *testing.T) {
	nodes, links := ring(12)
	sim := newDefaultSimulation(t, nodes, links, DefaultConfig())
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sim.State() != StateConverged {
		t.Errorf("state = %v, want converged", sim.State())
	}
	if sim.Ticks() < DefaultTicks || sim.Ticks() > DefaultTicks+1 {
		t.Errorf("ticks = %d, want about %d", sim.Ticks(), DefaultTicks)
	}
	if sim.Alpha() >= DefaultAlphaMin {
		t.Errorf("alpha = %v, want < %v", sim.Alpha(), DefaultAlphaMin)
	}
}

func TestLinkDistanceConvergence(t *testing.T) {
	nodes := []Node{NewNode(0), NewNode(1)}
	sim := NewSimulation(nodes, DefaultConfig())
	link := NewLinkForce([]Link{{Source: 0, Target: 1}})
	link.Distance = 50
	charge := NewManyBodyForce()
	charge.Strength = 0
	if err := sim.AddForce("link", link); err != nil {
		t.Fatal(err)
	}
	_ = sim.AddForce("charge", charge)
	_ = sim.AddForce("center", NewCenterForce(0, 0))

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := dist(nodes[0], nodes[1])
	if math.Abs(got-50) > 0.5 {
		t.Errorf("link length = %v, want 50 ± 1%%", got)
	}
}

func TestRepulsionSpreadsNodes(t *testing.T) {
	tests := []struct {
		name   string
		coords []float64
	}{
		{"close", []float64{0, 0, 1, 0}},
		{"diagonal", []float64{-3, -3, 4, 5}},
		{"far", []float64{-100, 0, 100, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := nodesAt(tt.coords...)
			before := dist(nodes[0], nodes[1])
			sim := NewSimulation(nodes, DefaultConfig())
			_ = sim.AddForce("charge", NewManyBodyForce())
			_ = sim.AddForce("center", NewCenterForce(0, 0))
			if err := sim.Run(context.Background()); err != nil {
				t.Fatal(err)
			}
			if after := dist(nodes[0], nodes[1]); after <= before {
				t.Errorf("distance %v -> %v, want growth", before, after)
			}
		})
	}
}

func TestCenteringInvariant(t *testing.T) {
	tests := []struct {
		name   string
		cx, cy float64
	}{
		{"origin", 0, 0},
		{"offset", 120, -40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, links := ring(8)
			sim := NewSimulation(nodes, DefaultConfig())
			_ = sim.AddForce("link", NewLinkForce(links))
			_ = sim.AddForce("charge", NewManyBodyForce())
			_ = sim.AddForce("center", NewCenterForce(tt.cx, tt.cy))
			if err := sim.Run(context.Background()); err != nil {
				t.Fatal(err)
			}
			var mx, my float64
			for _, n := range nodes {
				mx += n.X
				my += n.Y
			}
			mx /= float64(len(nodes))
			my /= float64(len(nodes))
			if math.Abs(mx-tt.cx) > 0.05 || math.Abs(my-tt.cy) > 0.05 {
				t.Errorf("mean = (%v, %v), want (%v, %v)", mx, my, tt.cx, tt.cy)
			}
		})
	}
}

func TestFixedNodeUnchanged(t *testing.T) {
	nodes, links := ring(6)
	nodes[2].Fix(17.5, -3.25)
	sim := newDefaultSimulation(t, nodes, links, DefaultConfig())
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nodes[2].X != 17.5 || nodes[2].Y != -3.25 {
		t.Errorf("fixed node moved to (%v, %v)", nodes[2].X, nodes[2].Y)
	}
	if nodes[2].VX != 0 || nodes[2].VY != 0 {
		t.Errorf("fixed node velocity = (%v, %v), want 0", nodes[2].VX, nodes[2].VY)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []Node {
		nodes, links := ring(25)
		links = append(links, Link{Source: 0, Target: 12}, Link{Source: 3, Target: 19})
		sim := newDefaultSimulation(t, nodes, links, DefaultConfig())
		if err := sim.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return nodes
	}
	a, b := run(), run()
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Fatalf("node %d: (%v, %v) != (%v, %v)", i, a[i].X, a[i].Y, b[i].X, b[i].Y)
		}
	}
}

func TestRunAndStartIdentical(t *testing.T) {
	nodesA, linksA := ring(30)
	simA := newDefaultSimulation(t, nodesA, linksA, DefaultConfig())
	if err := simA.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	nodesB, linksB := ring(30)
	simB := newDefaultSimulation(t, nodesB, linksB, DefaultConfig())
	var ticks int
	var ended EndEvent
	ev := <-simB.Start(context.Background(), Handlers{
		OnTick: func(TickEvent) { ticks++ },
		OnEnd:  func(e EndEvent) { ended = e },
	})

	if ev.State != StateConverged || ended.State != StateConverged {
		t.Fatalf("state = %v / %v, want converged", ev.State, ended.State)
	}
	if ticks != simA.Ticks() || ev.Ticks != simA.Ticks() {
		t.Errorf("event ticks = %d (%d callbacks), sync ticks = %d", ev.Ticks, ticks, simA.Ticks())
	}
	for i := range nodesA {
		if nodesA[i].X != nodesB[i].X || nodesA[i].Y != nodesB[i].Y {
			t.Fatalf("node %d diverged: (%v, %v) vs (%v, %v)", i, nodesA[i].X, nodesA[i].Y, nodesB[i].X, nodesB[i].Y)
		}
	}
}

func TestStopBetweenTicks(t *testing.T) {
	nodes, links := ring(5)
	sim := newDefaultSimulation(t, nodes, links, DefaultConfig())
	ev := <-sim.Start(context.Background(), Handlers{
		OnTick: func(e TickEvent) {
			if e.Tick == 10 {
				sim.Stop()
			}
		},
	})
	if ev.State != StateStopped {
		t.Errorf("state = %v, want stopped", ev.State)
	}
	if ev.Ticks != 10 {
		t.Errorf("ticks = %d, want 10", ev.Ticks)
	}
	if ev.Err != nil {
		t.Errorf("err = %v, want nil", ev.Err)
	}
}

func TestIterationLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTicks = 50
	nodes, links := ring(5)
	sim := newDefaultSimulation(t, nodes, links, cfg)
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sim.State() != StateIterationLimitReached {
		t.Errorf("state = %v, want iteration-limit", sim.State())
	}
	if sim.Ticks() != 50 {
		t.Errorf("ticks = %d, want 50", sim.Ticks())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nodes, links := ring(5)
	sim := newDefaultSimulation(t, nodes, links, DefaultConfig())
	if err := sim.Run(ctx); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sim.State() != StateStopped || sim.Ticks() != 0 {
		t.Errorf("state = %v after %d ticks, want stopped after 0", sim.State(), sim.Ticks())
	}
}

func TestCoincidentNodesSeparate(t *testing.T) {
	nodes := nodesAt(5, 5, 5, 5, 5, 5, 5, 5)
	sim := NewSimulation(nodes, DefaultConfig())
	_ = sim.AddForce("charge", NewManyBodyForce())
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := range nodes {
		if math.IsNaN(nodes[i].X) || math.IsNaN(nodes[i].Y) {
			t.Fatalf("node %d has NaN position", i)
		}
		for j := i + 1; j < len(nodes); j++ {
			if dist(nodes[i], nodes[j]) < 1 {
				t.Errorf("nodes %d and %d still within %v", i, j, dist(nodes[i], nodes[j]))
			}
		}
	}
}

func TestRestart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTicks = 3
	nodes, links := ring(4)
	sim := newDefaultSimulation(t, nodes, links, cfg)
	_ = sim.Run(context.Background())
	sim.Restart(0.5)
	if sim.State() != StateRunning || sim.Alpha() != 0.5 {
		t.Fatalf("after restart: state %v alpha %v", sim.State(), sim.Alpha())
	}
	_ = sim.Run(context.Background())
	if sim.Ticks() != 3 {
		t.Errorf("ticks = %d, want 3", sim.Ticks())
	}
}

func TestForceRegistry(t *testing.T) {
	sim := NewSimulation(nodesAt(0, 0, 10, 0), DefaultConfig())
	charge := NewManyBodyForce()
	_ = sim.AddForce("charge", charge)
	if sim.Force("charge") != Force(charge) {
		t.Error("Force(charge) did not return the registered force")
	}
	sim.RemoveForce("charge")
	if sim.Force("charge") != nil {
		t.Error("Force(charge) should be nil after removal")
	}
	if err := sim.AddForce("link", NewLinkForce([]Link{{Source: 0, Target: 7}})); err == nil {
		t.Error("AddForce should reject out-of-range link endpoint")
	}
}

func TestFind(t *testing.T) {
	sim := NewSimulation(nodesAt(0, 0, 10, 0, 0, 10), DefaultConfig())
	tests := []struct {
		x, y, r float64
		want    int
	}{
		{1, 1, 0, 0},
		{9, 1, 5, 1},
		{0, 8, 0, 2},
		{50, 50, 5, -1},
	}
	for _, tt := range tests {
		if got := sim.Find(tt.x, tt.y, tt.r); got != tt.want {
			t.Errorf("Find(%v, %v, %v) = %d, want %d", tt.x, tt.y, tt.r, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateRunning:               "running",
		StateConverged:             "converged",
		StateStopped:               "stopped",
		StateIterationLimitReached: "iteration-limit",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
