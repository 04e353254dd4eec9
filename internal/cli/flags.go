package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/render"
)

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags binds the simulation options to command-line flags. Only flags
// the user actually set override the config file.
type layoutFlags struct {
	opts layout.Options
	mode string
}

func newLayoutFlags() *layoutFlags {
	opts := layout.DefaultOptions()
	return &layoutFlags{opts: opts, mode: string(opts.Mode)}
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	o := &f.opts
	fs.Float64Var(&o.LinkDistance, "link-distance", o.LinkDistance, "link rest length")
	fs.IntVar(&o.LinkIterations, "link-iterations", o.LinkIterations, "link constraint passes per tick")
	fs.Float64Var(&o.ChargeStrength, "charge-strength", o.ChargeStrength, "many-body strength (negative repels)")
	fs.Float64Var(&o.Theta, "theta", o.Theta, "Barnes-Hut approximation threshold")
	fs.Float64Var(&o.VelocityDecay, "velocity-decay", o.VelocityDecay, "velocity multiplier per tick")
	fs.Float64Var(&o.AlphaMin, "alpha-min", o.AlphaMin, "stop once alpha drops below this")
	fs.Float64Var(&o.AlphaDecay, "alpha-decay", o.AlphaDecay, "alpha cooling rate")
	fs.IntVar(&o.Iterations, "iterations", o.Iterations, "run exactly this many ticks (0: until converged)")
	fs.BoolVar(&o.RandomInit, "random-init", o.RandomInit, "place free nodes randomly instead of keeping input positions")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "random placement seed")
	fs.Float64Var(&o.CenterX, "center-x", o.CenterX, "centering target x")
	fs.Float64Var(&o.CenterY, "center-y", o.CenterY, "centering target y")
	fs.StringVar(&f.mode, "mode", f.mode, "calling convention: sync, event")
}

// layoutFlagFields copies one flag's value between option sets.
var layoutFlagFields = map[string]func(dst, src *layout.Options){
	"link-distance":   func(d, s *layout.Options) { d.LinkDistance = s.LinkDistance },
	"link-iterations": func(d, s *layout.Options) { d.LinkIterations = s.LinkIterations },
	"charge-strength": func(d, s *layout.Options) { d.ChargeStrength = s.ChargeStrength },
	"theta":           func(d, s *layout.Options) { d.Theta = s.Theta },
	"velocity-decay":  func(d, s *layout.Options) { d.VelocityDecay = s.VelocityDecay },
	"alpha-min":       func(d, s *layout.Options) { d.AlphaMin = s.AlphaMin },
	"alpha-decay":     func(d, s *layout.Options) { d.AlphaDecay = s.AlphaDecay },
	"iterations":      func(d, s *layout.Options) { d.Iterations = s.Iterations },
	"random-init":     func(d, s *layout.Options) { d.RandomInit = s.RandomInit },
	"seed":            func(d, s *layout.Options) { d.Seed = s.Seed },
	"center-x":        func(d, s *layout.Options) { d.CenterX = s.CenterX },
	"center-y":        func(d, s *layout.Options) { d.CenterY = s.CenterY },
	"mode":            func(d, s *layout.Options) { d.Mode = s.Mode },
}

// apply overlays the flags that were set on base.
func (f *layoutFlags) apply(fs *pflag.FlagSet, base layout.Options) layout.Options {
	f.opts.Mode = layout.Mode(f.mode)
	fs.Visit(func(fl *pflag.Flag) {
		if copyField, ok := layoutFlagFields[fl.Name]; ok {
			copyField(&base, &f.opts)
		}
	})
	return base
}

// =============================================================================
// Render Flags
// =============================================================================

// renderFlags binds the drawing options to command-line flags.
type renderFlags struct {
	opts render.Options
}

func newRenderFlags() *renderFlags {
	return &renderFlags{opts: render.DefaultOptions()}
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	o := &f.opts
	fs.StringVarP(&o.Format, "format", "f", o.Format, "output format: svg, dot, png, pdf")
	fs.Float64Var(&o.NodeSize, "node-size", o.NodeSize, "node diameter in layout units")
	fs.Float64Var(&o.Scale, "scale", o.Scale, "coordinate scale factor")
	fs.BoolVar(&o.ShowLabels, "labels", o.ShowLabels, "draw node ids")
}

var renderFlagFields = map[string]func(dst, src *render.Options){
	"format":    func(d, s *render.Options) { d.Format = s.Format },
	"node-size": func(d, s *render.Options) { d.NodeSize = s.NodeSize },
	"scale":     func(d, s *render.Options) { d.Scale = s.Scale },
	"labels":    func(d, s *render.Options) { d.ShowLabels = s.ShowLabels },
}

func (f *renderFlags) apply(fs *pflag.FlagSet, base render.Options) render.Options {
	fs.Visit(func(fl *pflag.Flag) {
		if copyField, ok := renderFlagFields[fl.Name]; ok {
			copyField(&base, &f.opts)
		}
	})
	return base
}
