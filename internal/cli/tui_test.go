package cli

import (
	"errors"
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/layout"
)

func update(t *testing.T, m WatchModel, msg tea.Msg) (WatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(WatchModel)
	require.True(t, ok, "got %T", next)
	return wm, cmd
}

func TestWatchModelProgress(t *testing.T) {
	t.Run("alpha", func(t *testing.T) {
		m := NewWatchModel("g.json", layout.DefaultOptions(), nil)
		assert.Equal(t, 0.0, m.Progress())

		m, _ = update(t, m, tickMsg{Tick: 150, Alpha: math.Pow(0.001, 0.5)})
		assert.InDelta(t, 0.5, m.Progress(), 1e-9)

		m, _ = update(t, m, tickMsg{Tick: 301, Alpha: 0.0009})
		assert.Equal(t, 1.0, m.Progress())
	})

	t.Run("iterations", func(t *testing.T) {
		opts := layout.DefaultOptions()
		opts.Iterations = 200
		m := NewWatchModel("g.json", opts, nil)

		m, _ = update(t, m, tickMsg{Tick: 50, Alpha: 0.9})
		assert.Equal(t, 0.25, m.Progress())
		assert.Equal(t, force.TickEvent{Tick: 50, Alpha: 0.9}, m.Tick)
	})
}

func TestWatchModelStop(t *testing.T) {
	cancelled := 0
	m := NewWatchModel("g.json", layout.DefaultOptions(), func() { cancelled++ })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd, "the model waits for the run to end")
	assert.True(t, m.Stopping)
	assert.Equal(t, 1, cancelled)
	assert.Contains(t, m.View(), "stopping")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, 1, cancelled)

	m, cmd = update(t, m, doneMsg{err: errors.New("context canceled")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.EqualError(t, m.Err, "context canceled")
	assert.Contains(t, m.View(), "context canceled")
}

func TestWatchModelDone(t *testing.T) {
	m := NewWatchModel("graph.json", layout.DefaultOptions(), nil)
	assert.Contains(t, m.View(), "graph.json")
	assert.Contains(t, m.View(), "q stop")

	res := &layout.Result{Nodes: 5, Links: 4, Ticks: 300, State: "converged"}
	m, cmd := update(t, m, doneMsg{res: res})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1.0, m.Progress())

	view := m.View()
	assert.Contains(t, view, "300 ticks")
	assert.Contains(t, view, "converged")
	assert.Contains(t, view, "100%")
}

func TestSummaryTable(t *testing.T) {
	out := summaryTable([]summaryRow{
		{path: "one.json", nodes: 3, links: 2, ticks: 300, state: "converged"},
		{path: "two.json", nodes: 1, ticks: 10, state: "iteration-limit", cached: true},
	})
	for _, want := range []string{"one.json", "two.json", "converged", "iteration-limit", iconCached, iconFresh, "Nodes"} {
		assert.Contains(t, out, want)
	}
}
