package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// Watch styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	watchDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const barWidth = 32

// =============================================================================
// WatchModel - Live simulation monitor
// =============================================================================

// tickMsg reports one completed simulation tick.
type tickMsg force.TickEvent

// doneMsg carries the outcome of the layout run.
type doneMsg struct {
	res *layout.Result
	err error
}

// WatchModel is the bubbletea model shown by "layout --watch". It follows
// the event-driven simulation and quits once the run has ended.
type WatchModel struct {
	Name       string
	Iterations int
	AlphaMin   float64

	Tick     force.TickEvent
	Started  time.Time
	Result   *layout.Result
	Err      error
	Stopping bool

	cancel context.CancelFunc
}

// NewWatchModel creates a watch model for a run with the given options.
// cancel is called when the user asks to stop.
func NewWatchModel(name string, opts layout.Options, cancel context.CancelFunc) WatchModel {
	return WatchModel{
		Name:       name,
		Iterations: opts.Iterations,
		AlphaMin:   opts.AlphaMin,
		Tick:       force.TickEvent{Alpha: force.DefaultAlpha},
		Started:    time.Now(),
		cancel:     cancel,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The run ends between ticks; doneMsg follows.
			if !m.Stopping && m.cancel != nil {
				m.cancel()
			}
			m.Stopping = true
		}
	case tickMsg:
		m.Tick = force.TickEvent(msg)
	case doneMsg:
		m.Result, m.Err = msg.res, msg.err
		return m, tea.Quit
	}
	return m, nil
}

// Progress returns the completed fraction in [0, 1]: ticks over the tick
// budget, or how far alpha has cooled toward AlphaMin on a log scale.
func (m WatchModel) Progress() float64 {
	if m.Result != nil {
		return 1
	}
	var p float64
	switch {
	case m.Iterations > 0:
		p = float64(m.Tick.Tick) / float64(m.Iterations)
	case m.Tick.Alpha <= 0 || m.AlphaMin <= 0 || m.AlphaMin >= 1:
		p = 0
	default:
		p = math.Log(m.Tick.Alpha) / math.Log(m.AlphaMin)
	}
	return math.Max(0, math.Min(1, p))
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Laying out " + m.Name))
	b.WriteString("\n\n")

	p := m.Progress()
	full := int(math.Round(p * barWidth))
	b.WriteString(barFullStyle.Render(strings.Repeat("█", full)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", barWidth-full)))
	b.WriteString(StyleNumber.Render(fmt.Sprintf(" %3.0f%%", p*100)))
	b.WriteString("\n")

	elapsed := time.Since(m.Started).Round(10 * time.Millisecond)
	b.WriteString(watchDimStyle.Render(fmt.Sprintf("tick %d · alpha %.4f · %s", m.Tick.Tick, m.Tick.Alpha, elapsed)))
	b.WriteString("\n\n")

	switch {
	case m.Result != nil:
		b.WriteString(statsLine(m.Result.Nodes, m.Result.Links, m.Result.Ticks, m.Result.State, m.Result.CacheHit))
	case m.Err != nil:
		b.WriteString(StyleWarning.Render(m.Err.Error()))
	case m.Stopping:
		b.WriteString(watchDimStyle.Render("stopping..."))
	default:
		b.WriteString(watchDimStyle.Render("q stop"))
	}
	b.WriteString("\n")

	return b.String()
}

// runWatch lays out g in event mode while a WatchModel follows the ticks on
// stderr. The cache is bypassed so every tick is shown; the result is still
// stored.
func runWatch(ctx context.Context, runner *pipeline.Runner, g *graph.Graph, opts pipeline.Options, name string) (*layout.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewWatchModel(name, opts.Layout, cancel), tea.WithOutput(os.Stderr))

	opts.Refresh = true
	opts.Layout.Mode = layout.ModeEvent
	opts.Layout.OnTick = func(ev force.TickEvent) { p.Send(tickMsg(ev)) }

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		res, err := runner.Layout(ctx, g, opts)
		p.Send(doneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-finished
		return nil, fmt.Errorf("watch: %w", err)
	}
	<-finished

	m := final.(WatchModel)
	return m.Result, m.Err
}
