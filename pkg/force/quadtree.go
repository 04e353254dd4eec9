package force

import "math"

const (
	// noQuad marks an absent child or an empty body chain.
	noQuad int32 = -1

	// boundsPadding widens the root square so that no node sits exactly on
	// its border.
	boundsPadding = 1.0

	// minQuadFraction stops subdivision once a quadrant is this small
	// relative to the root; remaining bodies share one leaf.
	minQuadFraction = 1e-12
)

// quad is one square region of a Quadtree, stored in the tree's arena.
type quad struct {
	x0, y0, size float64  // top-left corner and side length
	children     [4]int32 // arena indices, noQuad when absent
	body         int32    // head of the leaf's body chain, noQuad when empty
	leaf         bool

	count  int     // bodies in this region
	mass   float64 // signed sum of body weights
	cx, cy float64 // centroid
}

// Quad is a read-only view of one quadrant, passed to [Quadtree.Visit].
type Quad struct {
	X0, Y0, Size float64
	Leaf         bool
	Count        int
	Mass         float64
	CX, CY       float64
	Bodies       []int // node indices held by a leaf
	Children     []int // arena indices of existing children
}

// Quadtree is a Barnes-Hut spatial index over node positions.
//
// The zero value is an empty tree ready for [Quadtree.Build]. Quadrants live
// in a single arena slice and reference children by index; rebuilding reuses
// the arena without reallocating.
type Quadtree struct {
	quads   []quad
	next    []int32 // next body in the same leaf, indexed by node index
	weights []float64
	nodes   []Node
	stack   []int32
}

// NewQuadtree builds a tree over nodes with unit weights.
func NewQuadtree(nodes []Node) *Quadtree {
	t := &Quadtree{}
	t.Build(nodes)
	return t
}

// Build discards the previous contents and indexes the current positions of
// nodes. Aggregates are computed with unit weights, so each quadrant's mass
// is its body count until [Quadtree.Aggregate] is called with other weights.
func (t *Quadtree) Build(nodes []Node) {
	t.nodes = nodes
	t.quads = t.quads[:0]
	if cap(t.next) < len(nodes) {
		t.next = make([]int32, len(nodes))
	}
	t.next = t.next[:len(nodes)]
	for i := range t.next {
		t.next[i] = noQuad
	}
	if len(nodes) == 0 {
		t.Aggregate(nil)
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range nodes {
		minX = math.Min(minX, nodes[i].X)
		minY = math.Min(minY, nodes[i].Y)
		maxX = math.Max(maxX, nodes[i].X)
		maxY = math.Max(maxY, nodes[i].Y)
	}
	half := math.Max(maxX-minX, maxY-minY)/2 + boundsPadding
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	t.newQuad(midX-half, midY-half, 2*half)

	for i := range nodes {
		t.insert(int32(i))
	}
	t.Aggregate(nil)
}

func (t *Quadtree) newQuad(x0, y0, size float64) int32 {
	t.quads = append(t.quads, quad{
		x0:       x0,
		y0:       y0,
		size:     size,
		children: [4]int32{noQuad, noQuad, noQuad, noQuad},
		body:     noQuad,
		leaf:     true,
	})
	return int32(len(t.quads) - 1)
}

func (t *Quadtree) insert(i int32) {
	x, y := t.nodes[i].X, t.nodes[i].Y
	minSize := t.quads[0].size * minQuadFraction
	q := int32(0)
	for {
		if t.quads[q].leaf {
			head := t.quads[q].body
			if head == noQuad {
				t.quads[q].body = i
				return
			}
			if (t.nodes[head].X == x && t.nodes[head].Y == y) || t.quads[q].size <= minSize {
				t.next[i] = head
				t.quads[q].body = i
				return
			}
			t.split(q)
			continue
		}
		k := t.quads[q].childIndex(x, y)
		c := t.quads[q].children[k]
		if c == noQuad {
			c = t.child(q, k)
		}
		q = c
	}
}

// split turns leaf q into an internal quadrant and moves its body chain into
// the matching child.
func (t *Quadtree) split(q int32) {
	head := t.quads[q].body
	t.quads[q].leaf = false
	t.quads[q].body = noQuad
	k := t.quads[q].childIndex(t.nodes[head].X, t.nodes[head].Y)
	c := t.child(q, k)
	t.quads[c].body = head
}

func (t *Quadtree) child(q int32, k int) int32 {
	p := t.quads[q]
	half := p.size / 2
	x0, y0 := p.x0, p.y0
	if k&1 != 0 {
		x0 += half
	}
	if k&2 != 0 {
		y0 += half
	}
	c := t.newQuad(x0, y0, half)
	t.quads[q].children[k] = c
	return c
}

// childIndex returns 0..3 for the NW, NE, SW and SE quadrants.
func (q *quad) childIndex(x, y float64) int {
	half := q.size / 2
	k := 0
	if x >= q.x0+half {
		k |= 1
	}
	if y >= q.y0+half {
		k |= 2
	}
	return k
}

// Aggregate recomputes every quadrant's mass and centroid bottom-up using
// weights indexed by node index. A nil slice means unit weights.
//
// Mass is the signed weight sum. Centroids are weighted by absolute mass and
// fall back to the plain body average where all weights are zero.
func (t *Quadtree) Aggregate(weights []float64) {
	t.weights = t.weights[:0]
	for i := range t.nodes {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		t.weights = append(t.weights, w)
	}

	// Children are always appended after their parent, so a reverse scan
	// visits every child before the quadrant that owns it.
	for q := len(t.quads) - 1; q >= 0; q-- {
		qd := &t.quads[q]
		qd.count, qd.mass = 0, 0
		var sx, sy, sw, px, py float64
		if qd.leaf {
			for b := qd.body; b != noQuad; b = t.next[b] {
				w := t.weights[b]
				qd.count++
				qd.mass += w
				sw += math.Abs(w)
				sx += math.Abs(w) * t.nodes[b].X
				sy += math.Abs(w) * t.nodes[b].Y
				px += t.nodes[b].X
				py += t.nodes[b].Y
			}
		} else {
			for _, c := range qd.children {
				if c == noQuad {
					continue
				}
				ch := &t.quads[c]
				qd.count += ch.count
				qd.mass += ch.mass
				aw := math.Abs(ch.mass)
				sw += aw
				sx += aw * ch.cx
				sy += aw * ch.cy
				px += float64(ch.count) * ch.cx
				py += float64(ch.count) * ch.cy
			}
		}
		switch {
		case sw > 0:
			qd.cx, qd.cy = sx/sw, sy/sw
		case qd.count > 0:
			qd.cx, qd.cy = px/float64(qd.count), py/float64(qd.count)
		default:
			qd.cx, qd.cy = qd.x0+qd.size/2, qd.y0+qd.size/2
		}
	}
}

// Accumulate walks the tree on behalf of node i and sums, over every body or
// aggregate the walk settles on, the separation vector scaled by mass / d².
//
// A quadrant of side w at squared distance l is treated as a single point
// when w²/theta2 < l. Squared distances below distMin2 are floored, points at
// or beyond distMax2 are ignored, and node i never contributes to itself.
func (t *Quadtree) Accumulate(i int, theta2, distMin2, distMax2 float64) (ax, ay float64) {
	if len(t.quads) == 0 {
		return 0, 0
	}
	n := &t.nodes[i]
	self := int32(i)
	stack := append(t.stack[:0], 0)
	for len(stack) > 0 {
		qd := &t.quads[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if qd.mass == 0 {
			continue
		}

		x, y := qd.cx-n.X, qd.cy-n.Y
		l := x*x + y*y

		if qd.size*qd.size/theta2 < l {
			if l < distMax2 {
				x, y, l = floorDistance(x, y, l, distMin2, i, -1)
				ax += x * qd.mass / l
				ay += y * qd.mass / l
			}
			continue
		}

		if !qd.leaf {
			for k := 3; k >= 0; k-- {
				if c := qd.children[k]; c != noQuad {
					stack = append(stack, c)
				}
			}
			continue
		}
		if l >= distMax2 {
			continue
		}

		other := -1
		for b := qd.body; b != noQuad; b = t.next[b] {
			if b != self {
				other = int(b)
				break
			}
		}
		if other < 0 {
			continue
		}
		x, y, l = floorDistance(x, y, l, distMin2, i, other)
		for b := qd.body; b != noQuad; b = t.next[b] {
			if b == self {
				continue
			}
			w := t.weights[b] / l
			ax += x * w
			ay += y * w
		}
	}
	t.stack = stack
	return ax, ay
}

// floorDistance replaces zero separation components with a jiggle and clamps
// the squared distance from below.
func floorDistance(x, y, l, distMin2 float64, i, j int) (float64, float64, float64) {
	if x == 0 {
		x = jiggle(i, j)
		l += x * x
	}
	if y == 0 {
		y = jiggle(i, j)
		l += y * y
	}
	if l < distMin2 {
		l = math.Sqrt(distMin2 * l)
	}
	return x, y, l
}

// Len returns the number of quadrants in the arena.
func (t *Quadtree) Len() int { return len(t.quads) }

// Visit calls fn for each quadrant in pre-order, starting at the root.
// Returning false from fn skips that quadrant's children.
func (t *Quadtree) Visit(fn func(q Quad) bool) {
	if len(t.quads) == 0 {
		return
	}
	stack := []int32{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		qd := t.quads[idx]
		view := Quad{
			X0: qd.x0, Y0: qd.y0, Size: qd.size,
			Leaf: qd.leaf, Count: qd.count, Mass: qd.mass,
			CX: qd.cx, CY: qd.cy,
		}
		for b := qd.body; b != noQuad; b = t.next[b] {
			view.Bodies = append(view.Bodies, int(b))
		}
		for _, c := range qd.children {
			if c != noQuad {
				view.Children = append(view.Children, int(c))
			}
		}
		if !fn(view) {
			continue
		}
		for k := len(view.Children) - 1; k >= 0; k-- {
			stack = append(stack, int32(view.Children[k]))
		}
	}
}
