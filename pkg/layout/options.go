package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcelayout/pkg/cache"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
)

// Mode selects the simulation calling convention. Both produce identical
// positions for identical input.
type Mode string

const (
	// ModeSync ticks on the calling goroutine with no notifications.
	ModeSync Mode = "sync"
	// ModeEvent runs the simulation on its own goroutine and reports every
	// tick to Options.OnTick.
	ModeEvent Mode = "event"
)

// DefaultSeed seeds random initialization.
const DefaultSeed = uint64(42)

// validate is a singleton validator instance.
var validate = errors.NewValidator()

// Options configures one layout run. The zero value is not valid; start from
// [DefaultOptions].
type Options struct {
	LinkDistance   float64 `json:"link_distance" toml:"link_distance" yaml:"link_distance" validate:"finite,gte=0"`
	LinkIterations int     `json:"link_iterations" toml:"link_iterations" yaml:"link_iterations" validate:"min=1"`
	ChargeStrength float64 `json:"charge_strength" toml:"charge_strength" yaml:"charge_strength" validate:"finite"`
	Theta          float64 `json:"theta" toml:"theta" yaml:"theta" validate:"finite,gt=0"`
	VelocityDecay  float64 `json:"velocity_decay" toml:"velocity_decay" yaml:"velocity_decay" validate:"finite,gte=0,lte=1"`
	AlphaMin       float64 `json:"alpha_min" toml:"alpha_min" yaml:"alpha_min" validate:"finite,gt=0,lt=1"`
	AlphaDecay     float64 `json:"alpha_decay" toml:"alpha_decay" yaml:"alpha_decay" validate:"finite,gt=0,lte=1"`

	// Iterations, when positive, runs exactly that many ticks instead of
	// running until alpha drops below AlphaMin.
	Iterations int `json:"iterations" toml:"iterations" yaml:"iterations" validate:"gte=0"`

	RandomInit bool    `json:"random_init" toml:"random_init" yaml:"random_init"`
	Seed       uint64  `json:"seed" toml:"seed" yaml:"seed"`
	CenterX    float64 `json:"center_x" toml:"center_x" yaml:"center_x" validate:"finite"`
	CenterY    float64 `json:"center_y" toml:"center_y" yaml:"center_y" validate:"finite"`
	Mode       Mode    `json:"mode" toml:"mode" yaml:"mode" validate:"oneof=sync event"`

	// Runtime options (not serialized)
	Logger *log.Logger           `json:"-" toml:"-" yaml:"-"`
	OnTick func(force.TickEvent) `json:"-" toml:"-" yaml:"-"`
}

// DefaultOptions returns the standard force-simulation defaults.
func DefaultOptions() Options {
	return Options{
		LinkDistance:   force.DefaultLinkDistance,
		LinkIterations: force.DefaultLinkIterations,
		ChargeStrength: force.DefaultChargeStrength,
		Theta:          force.DefaultTheta,
		VelocityDecay:  force.DefaultVelocityDecay,
		AlphaMin:       force.DefaultAlphaMin,
		AlphaDecay:     force.DefaultAlphaDecay,
		Seed:           DefaultSeed,
		Mode:           ModeSync,
	}
}

// Validate checks every field and returns an INVALID_CONFIG error naming the
// first offending one.
func (o *Options) Validate() error {
	return errors.FromValidation(validate.Struct(o))
}

// KeyOpts returns the options that determine the result, for cache keys.
func (o *Options) KeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		LinkDistance:   o.LinkDistance,
		LinkIterations: o.LinkIterations,
		ChargeStrength: o.ChargeStrength,
		Theta:          o.Theta,
		VelocityDecay:  o.VelocityDecay,
		AlphaMin:       o.AlphaMin,
		AlphaDecay:     o.AlphaDecay,
		Iterations:     o.Iterations,
		RandomInit:     o.RandomInit,
		Seed:           o.Seed,
		CenterX:        o.CenterX,
		CenterY:        o.CenterY,
	}
}

func (o *Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}

func (o *Options) simulationConfig() force.Config {
	cfg := force.DefaultConfig()
	cfg.AlphaMin = o.AlphaMin
	cfg.AlphaDecay = o.AlphaDecay
	cfg.VelocityDecay = o.VelocityDecay
	cfg.MaxTicks = o.Iterations
	return cfg
}
