package force

import (
	"math"
	"math/rand/v2"
	"testing"
)

func randomNodes(n int, seed uint64) []Node {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = NewNode(i)
		nodes[i].X = rng.Float64()*400 - 200
		nodes[i].Y = rng.Float64()*400 - 200
	}
	return nodes
}

func TestQuadtreeEmpty(t *testing.T) {
	tree := NewQuadtree(nil)
	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
	ax, ay := tree.Accumulate(0, 0.81, 1, math.Inf(1))
	if ax != 0 || ay != 0 {
		t.Errorf("Accumulate on empty tree = (%v, %v)", ax, ay)
	}
}

func TestQuadtreeAggregates(t *testing.T) {
	nodes := randomNodes(200, 7)
	tree := NewQuadtree(nodes)

	var root Quad
	seen := 0
	first := true
	tree.Visit(func(q Quad) bool {
		if first {
			root, first = q, false
		}
		if q.Leaf {
			seen += len(q.Bodies)
			if len(q.Bodies) > 1 {
				t.Errorf("leaf holds %d distinct bodies", len(q.Bodies))
			}
			for _, b := range q.Bodies {
				n := nodes[b]
				if n.X < q.X0 || n.X > q.X0+q.Size || n.Y < q.Y0 || n.Y > q.Y0+q.Size {
					t.Errorf("body %d at (%v, %v) outside its leaf", b, n.X, n.Y)
				}
			}
		}
		return true
	})

	if seen != len(nodes) {
		t.Errorf("leaves hold %d bodies, want %d", seen, len(nodes))
	}
	if root.Count != len(nodes) || root.Mass != float64(len(nodes)) {
		t.Errorf("root count/mass = %d/%v, want %d", root.Count, root.Mass, len(nodes))
	}

	var mx, my float64
	for _, n := range nodes {
		mx += n.X
		my += n.Y
	}
	mx /= float64(len(nodes))
	my /= float64(len(nodes))
	if math.Abs(root.CX-mx) > 1e-9 || math.Abs(root.CY-my) > 1e-9 {
		t.Errorf("root centroid = (%v, %v), want (%v, %v)", root.CX, root.CY, mx, my)
	}
}

func TestQuadtreeWeightedAggregates(t *testing.T) {
	nodes := nodesAt(0, 0, 10, 0, 0, 10, 10, 10)
	tree := NewQuadtree(nodes)
	tree.Aggregate([]float64{1, 3, 0, 0})

	tree.Visit(func(q Quad) bool {
		if q.Leaf {
			return false
		}
		var mass float64
		var count int
		for _, idx := range q.Children {
			c := tree.quads[idx]
			mass += c.mass
			count += c.count
		}
		if math.Abs(mass-q.Mass) > 1e-12 || count != q.Count {
			t.Errorf("quad mass/count = %v/%d, children sum to %v/%d", q.Mass, q.Count, mass, count)
		}
		return true
	})

	tree.Visit(func(q Quad) bool {
		if q.Mass != 4 {
			t.Errorf("root mass = %v, want 4", q.Mass)
		}
		if math.Abs(q.CX-7.5) > 1e-12 || math.Abs(q.CY) > 1e-12 {
			t.Errorf("root centroid = (%v, %v), want (7.5, 0)", q.CX, q.CY)
		}
		return false
	})
}

func TestQuadtreeCoincidentBodiesShareLeaf(t *testing.T) {
	nodes := nodesAt(3, 3, 3, 3, 3, 3)
	tree := NewQuadtree(nodes)
	if tree.Len() != 1 {
		t.Fatalf("Len() = %d, want a single leaf", tree.Len())
	}
	tree.Visit(func(q Quad) bool {
		if !q.Leaf || len(q.Bodies) != 3 {
			t.Errorf("root leaf=%v bodies=%v, want leaf with 3 bodies", q.Leaf, q.Bodies)
		}
		return true
	})
}

// TestAccumulateExact checks that theta = 0 reproduces the brute-force sum.
func TestAccumulateExact(t *testing.T) {
	nodes := randomNodes(60, 3)
	tree := NewQuadtree(nodes)
	for i := range nodes {
		ax, ay := tree.Accumulate(i, 0, 1, math.Inf(1))
		var bx, by float64
		for j := range nodes {
			if j == i {
				continue
			}
			x, y := nodes[j].X-nodes[i].X, nodes[j].Y-nodes[i].Y
			l := x*x + y*y
			if l < 1 {
				l = math.Sqrt(l)
			}
			bx += x / l
			by += y / l
		}
		if math.Abs(ax-bx) > 1e-9 || math.Abs(ay-by) > 1e-9 {
			t.Fatalf("node %d: tree (%v, %v), brute force (%v, %v)", i, ax, ay, bx, by)
		}
	}
}

// TestAccumulateApproximation checks that the default theta stays close to
// the exact sum on a spread-out point set.
func TestAccumulateApproximation(t *testing.T) {
	nodes := randomNodes(500, 11)
	tree := NewQuadtree(nodes)
	theta2 := DefaultTheta * DefaultTheta
	var errSum, normSum float64
	for i := range nodes {
		ax, ay := tree.Accumulate(i, theta2, 1, math.Inf(1))
		bx, by := tree.Accumulate(i, 0, 1, math.Inf(1))
		errSum += math.Hypot(ax-bx, ay-by)
		normSum += math.Hypot(bx, by)
	}
	if rel := errSum / normSum; rel > 0.25 {
		t.Errorf("mean relative error %v, want < 0.25", rel)
	}
}

func TestAccumulateDistanceMax(t *testing.T) {
	nodes := nodesAt(0, 0, 100, 0)
	tree := NewQuadtree(nodes)
	ax, ay := tree.Accumulate(0, 0.81, 1, 50*50)
	if ax != 0 || ay != 0 {
		t.Errorf("Accumulate beyond DistanceMax = (%v, %v), want 0", ax, ay)
	}
}

func TestTreeRebuildReusesArena(t *testing.T) {
	nodes := randomNodes(100, 5)
	tree := NewQuadtree(nodes)
	n := tree.Len()
	tree.Build(nodes)
	if tree.Len() != n {
		t.Errorf("rebuild over same positions: Len() = %d, want %d", tree.Len(), n)
	}
}
