package graph

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

// Recognized record fields.
const (
	FieldID       = "id"
	FieldX        = "x"
	FieldY        = "y"
	FieldVX       = "vx"
	FieldVY       = "vy"
	FieldFX       = "fx"
	FieldFY       = "fy"
	FieldStrength = "strength"
	FieldSource   = "source"
	FieldTarget   = "target"
)

// Document keys.
const (
	keyNodes = "nodes"
	keyLinks = "links"
)

// Record is one node or link object. Values are kept as raw JSON so fields
// this package does not understand are written back unchanged.
type Record map[string]json.RawMessage

// Graph is a node/link document.
type Graph struct {
	Nodes []Record
	Links []Record

	// Extra holds top-level fields other than "nodes" and "links".
	Extra map[string]json.RawMessage
}

// UnmarshalJSON decodes a document, rejecting a missing or null "nodes" key
// and non-object nodes and links.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedInput, err, "document is not a JSON object")
	}
	if top == nil {
		return errors.New(errors.ErrCodeMalformedInput, "document is null")
	}

	if isNull(top[keyNodes]) {
		return errors.New(errors.ErrCodeMalformedInput, "document has no %q array", keyNodes)
	}
	nodes, err := decodeRecords(top[keyNodes], "node")
	if err != nil {
		return err
	}
	links, err := decodeRecords(top[keyLinks], "link")
	if err != nil {
		return err
	}
	_, hasLinks := top[keyLinks]
	if hasLinks && links == nil {
		links = []Record{}
	}

	delete(top, keyNodes)
	delete(top, keyLinks)
	*g = Graph{Nodes: nodes, Links: links}
	if len(top) > 0 {
		g.Extra = top
	}
	return nil
}

func decodeRecords(raw json.RawMessage, kind string) ([]Record, error) {
	if isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "%ss must be an array", kind)
	}
	out := make([]Record, len(items))
	for i, item := range items {
		var r Record
		if err := json.Unmarshal(item, &r); err != nil || r == nil {
			return nil, errors.New(errors.ErrCodeMalformedInput, "%s %d is not an object", kind, i)
		}
		out[i] = r
	}
	return out, nil
}

// MarshalJSON encodes the document. Object keys are sorted, so equal graphs
// produce equal bytes.
func (g Graph) MarshalJSON() ([]byte, error) {
	top := make(map[string]any, len(g.Extra)+2)
	for k, v := range g.Extra {
		top[k] = v
	}
	nodes := g.Nodes
	if nodes == nil {
		nodes = []Record{}
	}
	top[keyNodes] = nodes
	if g.Links != nil {
		top[keyLinks] = g.Links
	}
	return json.Marshal(top)
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: cloneRecords(g.Nodes),
		Links: cloneRecords(g.Links),
	}
	if g.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(g.Extra))
		for k, v := range g.Extra {
			out.Extra[k] = slices.Clone(v)
		}
	}
	return out
}

func cloneRecords(rs []Record) []Record {
	if rs == nil {
		return nil
	}
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = slices.Clone(v)
	}
	return out
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Float returns the numeric field key. ok is false when the field is absent
// or null; a value of any other type is MALFORMED_INPUT.
func (r Record) Float(key string) (v float64, ok bool, err error) {
	raw, present := r[key]
	if !present || isNull(raw) {
		return 0, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, errors.New(errors.ErrCodeMalformedInput, "field %q must be a number, got %s", key, raw)
	}
	return v, true, nil
}

// SetFloat stores a numeric field. Non-finite values are stored as null.
func (r Record) SetFloat(key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r[key] = json.RawMessage("null")
		return
	}
	r[key] = json.RawMessage(strconv.AppendFloat(nil, v, 'g', -1, 64))
}

// String returns a string field, or "" when absent or not a string.
func (r Record) String(key string) string {
	var s string
	if raw, ok := r[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// identityKey canonicalizes a string or number reference. Strings and
// numbers never collide: "1" and 1 are different identities.
func identityKey(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return "s:" + s, true
	case '{', '[', 't', 'f', 'n':
		return "", false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", false
	}
	return numberKey(f), true
}

func numberKey(f float64) string {
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
}

// numberRef returns the numeric value of an identity key.
func numberRef(key string) (float64, bool) {
	if len(key) < 2 || key[:2] != "n:" {
		return 0, false
	}
	f, err := strconv.ParseFloat(key[2:], 64)
	return f, err == nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
