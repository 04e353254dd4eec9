package graph

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
)

// RandomRadius is the radius of the disk sampled by [InitRandom].
const RandomRadius = 10.0

// InitMode selects how [InitializePositions] places nodes.
type InitMode int

const (
	// InitPreserve keeps input positions and places the rest on the
	// phyllotaxis spiral.
	InitPreserve InitMode = iota
	// InitRandom samples every free node uniformly from a disk of radius
	// RandomRadius around the origin.
	InitRandom
)

// String returns "preserve" or "random".
func (m InitMode) String() string {
	if m == InitRandom {
		return "random"
	}
	return "preserve"
}

// NewRand returns the deterministic generator used for random placement.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Build converts g into simulation nodes and resolved links. Node indices
// follow input order. g is not modified.
//
// A link endpoint names a node by its "id". A numeric endpoint that matches
// no id falls back to the node at that index.
func Build(g *Graph) ([]force.Node, []force.Link, error) {
	nodes := make([]force.Node, len(g.Nodes))
	ids := make(map[string]int, len(g.Nodes))

	for i, rec := range g.Nodes {
		if raw, ok := rec[FieldID]; ok && !isNull(raw) {
			key, valid := identityKey(raw)
			if !valid {
				return nil, nil, errors.New(errors.ErrCodeMalformedInput, "node %d: id must be a string or number, got %s", i, raw)
			}
			if prev, dup := ids[key]; dup {
				return nil, nil, errors.New(errors.ErrCodeMalformedInput, "node %d: duplicate id %s (first used by node %d)", i, displayKey(key), prev)
			}
			ids[key] = i
		}

		n, err := buildNode(i, rec)
		if err != nil {
			return nil, nil, err
		}
		nodes[i] = n
	}

	links := make([]force.Link, len(g.Links))
	for i, rec := range g.Links {
		src, err := resolve(rec, FieldSource, i, ids, len(nodes))
		if err != nil {
			return nil, nil, err
		}
		dst, err := resolve(rec, FieldTarget, i, ids, len(nodes))
		if err != nil {
			return nil, nil, err
		}
		links[i] = force.Link{Index: i, Source: src, Target: dst}
	}
	return nodes, links, nil
}

func buildNode(i int, rec Record) (force.Node, error) {
	n := force.NewNode(i)
	var fx, fy *float64
	fields := []struct {
		key string
		set func(float64)
	}{
		{FieldX, func(v float64) { n.X = v }},
		{FieldY, func(v float64) { n.Y = v }},
		{FieldVX, func(v float64) { n.VX = v }},
		{FieldVY, func(v float64) { n.VY = v }},
		{FieldFX, func(v float64) { fx = &v }},
		{FieldFY, func(v float64) { fy = &v }},
		{FieldStrength, func(v float64) { n.Strength = v }},
	}
	for _, f := range fields {
		v, ok, err := rec.Float(f.key)
		if err != nil {
			return n, errors.Wrap(errors.ErrCodeMalformedInput, err, "node %d", i)
		}
		if ok {
			f.set(v)
		}
	}
	n.FX, n.FY = fx, fy
	return n, nil
}

func resolve(rec Record, field string, link int, ids map[string]int, n int) (int, error) {
	raw, ok := rec[field]
	if !ok || isNull(raw) {
		return 0, errors.New(errors.ErrCodeMalformedInput, "link %d: missing %s", link, field)
	}
	key, valid := identityKey(raw)
	if !valid {
		return 0, errors.New(errors.ErrCodeMalformedInput, "link %d: %s must be a string or number, got %s", link, field, raw)
	}
	if idx, found := ids[key]; found {
		return idx, nil
	}
	if f, num := numberRef(key); num && f == math.Trunc(f) && f >= 0 && f < float64(n) {
		return int(f), nil
	}
	return 0, errors.New(errors.ErrCodeUnresolvedLink, "link %d: %s %s not found", link, field, displayKey(key))
}

// displayKey renders an identity key the way it appeared in the input.
func displayKey(key string) string {
	if len(key) > 2 && key[:2] == "s:" {
		return fmt.Sprintf("%q", key[2:])
	}
	return key[2:]
}

// InitializePositions assigns starting positions. Fixed nodes always start at
// their fixed position. rng is only used by InitRandom and may be nil
// otherwise.
func InitializePositions(nodes []force.Node, mode InitMode, rng *rand.Rand) {
	if mode == InitRandom {
		for i := range nodes {
			n := &nodes[i]
			if n.Fixed() {
				continue
			}
			// r = R·sqrt(u) gives uniform density over the disk's area.
			r := RandomRadius * math.Sqrt(rng.Float64())
			a := 2 * math.Pi * rng.Float64()
			n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		}
	}
	force.InitializeNodes(nodes)
}

// CopyBack writes each node's final x and y onto the matching record of g.
// No other field is touched.
func CopyBack(nodes []force.Node, g *Graph) error {
	if len(nodes) != len(g.Nodes) {
		return errors.New(errors.ErrCodeInternal, "copy back: %d nodes for %d records", len(nodes), len(g.Nodes))
	}
	for i := range nodes {
		g.Nodes[i].SetFloat(FieldX, nodes[i].X)
		g.Nodes[i].SetFloat(FieldY, nodes[i].Y)
	}
	return nil
}
