package force

import "testing"

func TestCenterForce(t *testing.T) {
	nodes := nodesAt(10, 0, 20, 10, 30, 20)
	nodes[2].Fix(30, 20)
	f := NewCenterForce(5, 5)
	f.Apply(1, nodes, nil)

	// Free mean is (15, 5); the shift is (10, 0).
	for i := 0; i < 2; i++ {
		if nodes[i].VX != -10 || nodes[i].VY != 0 {
			t.Errorf("node %d velocity = (%v, %v), want (-10, 0)", i, nodes[i].VX, nodes[i].VY)
		}
	}
	if nodes[2].VX != 0 || nodes[2].VY != 0 {
		t.Errorf("fixed node velocity = (%v, %v)", nodes[2].VX, nodes[2].VY)
	}
}

func TestCenterForceStrength(t *testing.T) {
	nodes := nodesAt(4, 8)
	f := NewCenterForce(0, 0)
	f.Strength = 0.5
	f.Apply(0.01, nodes, nil)
	if nodes[0].VX != -2 || nodes[0].VY != -4 {
		t.Errorf("velocity = (%v, %v), want (-2, -4)", nodes[0].VX, nodes[0].VY)
	}
}

func TestCenterForceAllFixed(t *testing.T) {
	nodes := nodesAt(4, 8)
	nodes[0].Fix(4, 8)
	NewCenterForce(0, 0).Apply(1, nodes, nil)
	if nodes[0].VX != 0 || nodes[0].VY != 0 {
		t.Errorf("velocity = (%v, %v), want 0", nodes[0].VX, nodes[0].VY)
	}
}
