package force

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
)

// Default cooling and integration parameters. AlphaDecay is chosen so that
// alpha falls from 1 to AlphaMin in DefaultTicks ticks.
const (
	DefaultAlpha         = 1.0
	DefaultAlphaMin      = 0.001
	DefaultAlphaTarget   = 0.0
	DefaultVelocityDecay = 0.6
	DefaultTicks         = 300
)

// DefaultAlphaDecay is 1 - AlphaMin^(1/300).
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/DefaultTicks)

// State is the lifecycle state of a Simulation.
type State int

const (
	StateRunning State = iota
	StateConverged
	StateStopped
	StateIterationLimitReached
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateStopped:
		return "stopped"
	case StateIterationLimitReached:
		return "iteration-limit"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further ticks will be issued.
func (s State) Terminal() bool { return s != StateRunning }

// Config holds the cooling schedule and integration parameters.
// Use [DefaultConfig] and override fields; the zero value never converges.
type Config struct {
	Alpha         float64 // initial alpha
	AlphaMin      float64 // run ends once alpha drops below this
	AlphaDecay    float64 // fraction of (AlphaTarget - alpha) applied per tick
	AlphaTarget   float64
	VelocityDecay float64 // velocity multiplier applied before integration

	// MaxTicks, when positive, runs exactly this many ticks and ignores
	// AlphaMin.
	MaxTicks int
}

// DefaultConfig returns the standard cooling schedule: alpha decays from 1
// below 0.001 in about 300 ticks with velocity decay 0.6.
func DefaultConfig() Config {
	return Config{
		Alpha:         DefaultAlpha,
		AlphaMin:      DefaultAlphaMin,
		AlphaDecay:    DefaultAlphaDecay,
		AlphaTarget:   DefaultAlphaTarget,
		VelocityDecay: DefaultVelocityDecay,
	}
}

// TickEvent is delivered to [Handlers.OnTick] after every completed tick.
type TickEvent struct {
	Tick  int     // 1-based number of the completed tick
	Alpha float64 // alpha after the tick's decay step
}

// EndEvent is delivered to [Handlers.OnEnd] and on the channel returned by
// [Simulation.Start] once the run terminates.
type EndEvent struct {
	Ticks int
	Alpha float64
	State State
	Err   error // context error when the run was cancelled
}

// Handlers are the callbacks of the event-driven calling convention.
// Both run on the simulation goroutine between ticks, so they may read node
// state without synchronization. Either may be nil.
type Handlers struct {
	OnTick func(TickEvent)
	OnEnd  func(EndEvent)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation drives a set of forces over a node slice to equilibrium.
type Simulation struct {
	nodes  []Node
	forces []namedForce
	index  Quadtree

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	maxTicks      int

	ticks   int
	state   State
	stopped atomic.Bool
}

// NewSimulation returns a simulation over nodes. The slice is used in place:
// positions and velocities are updated by every tick. Nodes are initialized
// with [InitializeNodes].
func NewSimulation(nodes []Node, cfg Config) *Simulation {
	InitializeNodes(nodes)
	return &Simulation{
		nodes:         nodes,
		alpha:         cfg.Alpha,
		alphaMin:      cfg.AlphaMin,
		alphaDecay:    cfg.AlphaDecay,
		alphaTarget:   cfg.AlphaTarget,
		velocityDecay: cfg.VelocityDecay,
		maxTicks:      cfg.MaxTicks,
	}
}

// Nodes returns the live node slice.
func (s *Simulation) Nodes() []Node { return s.nodes }

// AddForce registers f under name, replacing any force with the same name
// in place. Forces are applied in registration order.
func (s *Simulation) AddForce(name string, f Force) error {
	if err := f.Initialize(s.nodes); err != nil {
		return fmt.Errorf("initialize force %q: %w", name, err)
	}
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return nil
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	return nil
}

// RemoveForce unregisters the named force.
func (s *Simulation) RemoveForce(name string) {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Force returns the named force, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets alpha, for example to reheat a converged simulation.
func (s *Simulation) SetAlpha(alpha float64) { s.alpha = alpha }

// SetAlphaTarget sets the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(target float64) { s.alphaTarget = target }

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() int { return s.ticks }

// State returns the lifecycle state.
func (s *Simulation) State() State { return s.state }

// Stop requests termination. It is safe to call from any goroutine and takes
// effect before the next tick; the current tick always completes.
func (s *Simulation) Stop() { s.stopped.Store(true) }

// Restart returns a terminated simulation to the running state with alpha
// reset to a, keeping positions and velocities.
func (s *Simulation) Restart(a float64) {
	s.stopped.Store(false)
	s.state = StateRunning
	s.alpha = a
	s.ticks = 0
}

// Tick advances the simulation by one time step regardless of state.
func (s *Simulation) Tick() {
	s.index.Build(s.nodes)
	for _, nf := range s.forces {
		nf.force.Apply(s.alpha, s.nodes, &s.index)
	}

	for i := range s.nodes {
		n := &s.nodes[i]
		if n.Fixed() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= s.velocityDecay
		n.VY *= s.velocityDecay
		n.X += n.VX
		n.Y += n.VY
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	s.ticks++
}

// advance updates the state for the coming tick and reports whether one
// should be issued.
func (s *Simulation) advance() bool {
	switch {
	case s.state.Terminal():
	case s.stopped.Load():
		s.state = StateStopped
	case s.maxTicks > 0:
		if s.ticks >= s.maxTicks {
			s.state = StateIterationLimitReached
		}
	case s.alpha < s.alphaMin:
		s.state = StateConverged
	}
	return !s.state.Terminal()
}

// Run ticks on the calling goroutine until the simulation converges, reaches
// its tick budget, is stopped, or ctx is cancelled. Cancellation is checked
// between ticks and returns the context error with state StateStopped.
func (s *Simulation) Run(ctx context.Context) error {
	for s.advance() {
		if err := ctx.Err(); err != nil {
			s.state = StateStopped
			return err
		}
		s.Tick()
	}
	return nil
}

// Start runs the simulation on a new goroutine using the same tick loop as
// [Simulation.Run], calling h.OnTick after every tick and h.OnEnd once at the
// end. The returned channel receives the EndEvent and is then closed.
//
// The caller must not touch the node slice until the end event arrives,
// other than from inside the handlers.
func (s *Simulation) Start(ctx context.Context, h Handlers) <-chan EndEvent {
	done := make(chan EndEvent, 1)
	go func() {
		defer close(done)
		var err error
		for s.advance() {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				s.state = StateStopped
			default:
				s.Tick()
				if h.OnTick != nil {
					h.OnTick(TickEvent{Tick: s.ticks, Alpha: s.alpha})
				}
			}
			if err != nil {
				break
			}
		}
		ev := EndEvent{Ticks: s.ticks, Alpha: s.alpha, State: s.state, Err: err}
		if h.OnEnd != nil {
			h.OnEnd(ev)
		}
		done <- ev
	}()
	return done
}

// Find returns the index of the node closest to (x, y) within radius, or -1.
// A radius of zero or less means unbounded.
func (s *Simulation) Find(x, y, radius float64) int {
	best := -1
	r2 := math.Inf(1)
	if radius > 0 {
		r2 = radius * radius
	}
	for i := range s.nodes {
		dx, dy := x-s.nodes[i].X, y-s.nodes[i].Y
		d2 := dx*dx + dy*dy
		if d2 < r2 {
			best, r2 = i, d2
		}
	}
	return best
}
