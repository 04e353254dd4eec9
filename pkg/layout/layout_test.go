package layout

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

const sampleGraph = `{
	"nodes": [
		{"id": "A", "group": 1},
		{"id": "B", "group": 1},
		{"id": "C", "group": 2},
		{"id": "D", "group": 2},
		{"id": "E", "group": 3, "fx": 40, "fy": -20}
	],
	"links": [
		{"source": "A", "target": "B"},
		{"source": "B", "target": "C"},
		{"source": "C", "target": "D"},
		{"source": "D", "target": "A"},
		{"source": "A", "target": "E", "value": 2}
	]
}`

func parse(t *testing.T, s string) *graph.Graph {
	t.Helper()
	g, err := graph.Unmarshal([]byte(s))
	require.NoError(t, err)
	return g
}

func marshal(t *testing.T, g *graph.Graph) string {
	t.Helper()
	b, err := graph.Marshal(g)
	require.NoError(t, err)
	return string(b)
}

func position(t *testing.T, g *graph.Graph, i int) (float64, float64) {
	t.Helper()
	x, okX, err := g.Nodes[i].Float(graph.FieldX)
	require.NoError(t, err)
	y, okY, err := g.Nodes[i].Float(graph.FieldY)
	require.NoError(t, err)
	require.True(t, okX && okY, "node %d has no position", i)
	return x, y
}

func TestOptionsValidate(t *testing.T) {
	defaults := DefaultOptions()
	require.NoError(t, defaults.Validate())

	tests := []struct {
		name   string
		modify func(*Options)
		field  string
	}{
		{"link iterations", func(o *Options) { o.LinkIterations = 0 }, "LinkIterations"},
		{"velocity decay", func(o *Options) { o.VelocityDecay = 1.5 }, "VelocityDecay"},
		{"theta", func(o *Options) { o.Theta = 0 }, "Theta"},
		{"alpha min", func(o *Options) { o.AlphaMin = 0 }, "AlphaMin"},
		{"negative iterations", func(o *Options) { o.Iterations = -1 }, "Iterations"},
		{"mode", func(o *Options) { o.Mode = "async" }, "Mode"},
		{"link distance", func(o *Options) { o.LinkDistance = -1 }, "LinkDistance"},
		{"nan charge", func(o *Options) { o.ChargeStrength = math.NaN() }, "ChargeStrength"},
		{"infinite charge", func(o *Options) { o.ChargeStrength = math.Inf(-1) }, "ChargeStrength"},
		{"infinite center x", func(o *Options) { o.CenterX = math.Inf(1) }, "CenterX"},
		{"nan center y", func(o *Options) { o.CenterY = math.NaN() }, "CenterY"},
		{"infinite link distance", func(o *Options) { o.LinkDistance = math.Inf(1) }, "LinkDistance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
			assert.Contains(t, errors.UserMessage(err), tt.field)
		})
	}
}

func TestComputeConverges(t *testing.T) {
	g := parse(t, sampleGraph)
	res, err := Compute(context.Background(), g, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, force.StateConverged.String(), res.State)
	assert.InDelta(t, force.DefaultTicks, res.Ticks, 1)
	assert.Less(t, res.Alpha, force.DefaultAlphaMin)
	assert.Equal(t, 5, res.Nodes)
	assert.Equal(t, 5, res.Links)
	assert.Len(t, res.RunID, 36)

	for i := range g.Nodes {
		x, y := position(t, g, i)
		assert.False(t, math.IsNaN(x) || math.IsNaN(y))
	}

	x, y := position(t, g, 4)
	assert.Equal(t, 40.0, x, "fixed node x")
	assert.Equal(t, -20.0, y, "fixed node y")

	assert.Equal(t, `1`, string(g.Nodes[0]["group"]), "unknown fields preserved")
	assert.Equal(t, `2`, string(g.Links[4]["value"]))
	_, hasVX := g.Nodes[0][graph.FieldVX]
	assert.False(t, hasVX, "only x and y are written back")
}

func TestComputeDeterministic(t *testing.T) {
	a, b := parse(t, sampleGraph), parse(t, sampleGraph)
	_, err := Compute(context.Background(), a, DefaultOptions())
	require.NoError(t, err)
	_, err = Compute(context.Background(), b, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, marshal(t, a), marshal(t, b))
}

func TestComputeModesIdentical(t *testing.T) {
	syncGraph, eventGraph := parse(t, sampleGraph), parse(t, sampleGraph)

	_, err := Compute(context.Background(), syncGraph, DefaultOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Mode = ModeEvent
	ticks := 0
	opts.OnTick = func(ev force.TickEvent) {
		ticks++
		assert.Equal(t, ticks, ev.Tick)
	}
	res, err := Compute(context.Background(), eventGraph, opts)
	require.NoError(t, err)

	assert.Equal(t, res.Ticks, ticks)
	assert.Equal(t, marshal(t, syncGraph), marshal(t, eventGraph))
}

func TestComputeLinkDistance(t *testing.T) {
	g := parse(t, `{"nodes":[{"id":"a"},{"id":"b"}],"links":[{"source":"a","target":"b"}]}`)
	opts := DefaultOptions()
	opts.LinkDistance = 50
	opts.ChargeStrength = 0

	_, err := Compute(context.Background(), g, opts)
	require.NoError(t, err)

	ax, ay := position(t, g, 0)
	bx, by := position(t, g, 1)
	assert.InEpsilon(t, 50, math.Hypot(ax-bx, ay-by), 0.01)
}

func TestComputeCentering(t *testing.T) {
	g := parse(t, `{"nodes":[{},{},{},{},{},{}],"links":[{"source":0,"target":1},{"source":2,"target":3}]}`)
	opts := DefaultOptions()
	opts.CenterX, opts.CenterY = 100, -50

	_, err := Compute(context.Background(), g, opts)
	require.NoError(t, err)

	var mx, my float64
	for i := range g.Nodes {
		x, y := position(t, g, i)
		mx += x / 6
		my += y / 6
	}
	assert.InDelta(t, 100, mx, 0.1)
	assert.InDelta(t, -50, my, 0.1)
}

func TestComputeIterations(t *testing.T) {
	g := parse(t, sampleGraph)
	opts := DefaultOptions()
	opts.Iterations = 17

	res, err := Compute(context.Background(), g, opts)
	require.NoError(t, err)
	assert.Equal(t, 17, res.Ticks)
	assert.Equal(t, force.StateIterationLimitReached.String(), res.State)
}

func TestComputeUnresolvedLink(t *testing.T) {
	g := parse(t, `{"nodes":[{"id":"A"},{"id":"B"}],"links":[{"source":"A","target":"Z"}]}`)
	before := marshal(t, g)

	res, err := Compute(context.Background(), g, DefaultOptions())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedLink), "got %v", err)
	assert.Equal(t, before, marshal(t, g))
}

func TestComputeCancelled(t *testing.T) {
	for _, mode := range []Mode{ModeSync, ModeEvent} {
		t.Run(string(mode), func(t *testing.T) {
			g := parse(t, sampleGraph)
			before := marshal(t, g)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			opts := DefaultOptions()
			opts.Mode = mode

			_, err := Compute(ctx, g, opts)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, before, marshal(t, g))
		})
	}
}

func TestComputeRandomInit(t *testing.T) {
	run := func(seed uint64) string {
		g := parse(t, sampleGraph)
		opts := DefaultOptions()
		opts.RandomInit = true
		opts.Seed = seed
		opts.Iterations = 1
		_, err := Compute(context.Background(), g, opts)
		require.NoError(t, err)
		return marshal(t, g)
	}
	assert.Equal(t, run(1), run(1))
	assert.NotEqual(t, run(1), run(2))
}

func TestComputeInvalidOptions(t *testing.T) {
	g := parse(t, sampleGraph)
	before := marshal(t, g)
	opts := DefaultOptions()
	opts.LinkIterations = 0

	_, err := Compute(context.Background(), g, opts)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	assert.Equal(t, before, marshal(t, g))
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	started, completed int
	state              string
	duration           time.Duration
}

func (h *recordingHooks) OnLayoutStart(context.Context, int, int) { h.started++ }
func (h *recordingHooks) OnLayoutComplete(_ context.Context, state string, _ int, d time.Duration, _ error) {
	h.completed++
	h.state = state
	h.duration = d
}

func TestComputeHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLayoutHooks(hooks)
	t.Cleanup(observability.Reset)

	_, err := Compute(context.Background(), parse(t, sampleGraph), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, hooks.started)
	assert.Equal(t, 1, hooks.completed)
	assert.Equal(t, "converged", hooks.state)
	assert.Positive(t, hooks.duration)
}
