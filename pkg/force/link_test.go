package force

import (
	"errors"
	"math"
	"testing"
)

func TestLinkForceInitialize(t *testing.T) {
	tests := []struct {
		name    string
		links   []Link
		wantErr bool
	}{
		{"valid", []Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}}, false},
		{"negative source", []Link{{Source: -1, Target: 1}}, true},
		{"target out of range", []Link{{Source: 0, Target: 3}}, true},
		{"self loop", []Link{{Source: 1, Target: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLinkForce(tt.links)
			err := f.Initialize(nodesAt(0, 0, 1, 1, 2, 2))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLinkEndpoint) {
				t.Errorf("error %v does not wrap ErrLinkEndpoint", err)
			}
		})
	}
}

func TestLinkForceBias(t *testing.T) {
	// Star: hub 0 with three leaves. The hub has degree 3, each leaf 1, so
	// the leaf takes 3/4 of each correction and the hub 1/4.
	nodes := nodesAt(0, 0, 10, 0, -10, 0, 0, 10)
	links := []Link{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 0, Target: 3}}
	f := NewLinkForce(links)
	if err := f.Initialize(nodes); err != nil {
		t.Fatal(err)
	}
	if f.bias[0] != 0.75 || f.strengths[0] != 1 {
		t.Fatalf("bias/strength = %v/%v, want 0.75/1", f.bias[0], f.strengths[0])
	}

	one := nodesAt(0, 0, 10, 0)
	g := NewLinkForce([]Link{{Source: 0, Target: 1}})
	g.bias = []float64{0.75}
	g.strengths = []float64{1}
	g.Apply(1, one, nil)
	// Compressed to 10 against a rest length of 30: the leaf moves 15 outward,
	// the hub 5 the other way.
	if math.Abs(one[1].VX-15) > 1e-12 || math.Abs(one[0].VX+5) > 1e-12 {
		t.Errorf("velocities = %v, %v, want -5, 15", one[0].VX, one[1].VX)
	}
}

func TestLinkForceSkipsFixedNodes(t *testing.T) {
	nodes := nodesAt(0, 0, 100, 0)
	nodes[0].Fix(0, 0)
	f := NewLinkForce([]Link{{Source: 0, Target: 1}})
	if err := f.Initialize(nodes); err != nil {
		t.Fatal(err)
	}
	f.Apply(1, nodes, nil)
	if nodes[0].VX != 0 || nodes[0].VY != 0 {
		t.Errorf("fixed node velocity = (%v, %v)", nodes[0].VX, nodes[0].VY)
	}
	if nodes[1].VX >= 0 {
		t.Errorf("free node velocity %v, want pull toward the fixed node", nodes[1].VX)
	}
}

func TestLinkForceZeroLength(t *testing.T) {
	nodes := nodesAt(4, 4, 4, 4)
	f := NewLinkForce([]Link{{Source: 0, Target: 1}})
	_ = f.Initialize(nodes)
	f.Apply(1, nodes, nil)
	for i, n := range nodes {
		if math.IsNaN(n.VX) || math.IsInf(n.VX, 0) {
			t.Fatalf("node %d velocity %v", i, n.VX)
		}
	}
	if nodes[0].VX == nodes[1].VX {
		t.Error("coincident endpoints should be pushed apart")
	}
}

func TestLinkForceIterations(t *testing.T) {
	apply := func(iterations int) float64 {
		nodes := nodesAt(0, 0, 100, 0)
		f := NewLinkForce([]Link{{Source: 0, Target: 1}})
		f.Iterations = iterations
		_ = f.Initialize(nodes)
		f.Apply(0.5, nodes, nil)
		return nodes[1].VX
	}
	if one, three := apply(1), apply(3); three >= one {
		t.Errorf("three iterations (%v) should correct more than one (%v)", three, one)
	}
}
