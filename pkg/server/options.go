package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// queryParser applies one query parameter to the options.
type queryParser func(o *pipeline.Options, v string) error

func floatParam(set func(*pipeline.Options, float64)) queryParser {
	return func(o *pipeline.Options, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		set(o, f)
		return nil
	}
}

func intParam(set func(*pipeline.Options, int)) queryParser {
	return func(o *pipeline.Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(o, n)
		return nil
	}
}

func boolParam(set func(*pipeline.Options, bool)) queryParser {
	return func(o *pipeline.Options, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		set(o, b)
		return nil
	}
}

var queryParams = map[string]queryParser{
	"link_distance":   floatParam(func(o *pipeline.Options, v float64) { o.Layout.LinkDistance = v }),
	"link_iterations": intParam(func(o *pipeline.Options, v int) { o.Layout.LinkIterations = v }),
	"charge_strength": floatParam(func(o *pipeline.Options, v float64) { o.Layout.ChargeStrength = v }),
	"theta":           floatParam(func(o *pipeline.Options, v float64) { o.Layout.Theta = v }),
	"velocity_decay":  floatParam(func(o *pipeline.Options, v float64) { o.Layout.VelocityDecay = v }),
	"alpha_min":       floatParam(func(o *pipeline.Options, v float64) { o.Layout.AlphaMin = v }),
	"alpha_decay":     floatParam(func(o *pipeline.Options, v float64) { o.Layout.AlphaDecay = v }),
	"iterations":      intParam(func(o *pipeline.Options, v int) { o.Layout.Iterations = v }),
	"random_init":     boolParam(func(o *pipeline.Options, v bool) { o.Layout.RandomInit = v }),
	"center_x":        floatParam(func(o *pipeline.Options, v float64) { o.Layout.CenterX = v }),
	"center_y":        floatParam(func(o *pipeline.Options, v float64) { o.Layout.CenterY = v }),
	"seed": func(o *pipeline.Options, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		o.Layout.Seed = n
		return nil
	},
	"mode": func(o *pipeline.Options, v string) error {
		o.Layout.Mode = layout.Mode(v)
		return nil
	},
	"format": func(o *pipeline.Options, v string) error {
		o.Render.Format = v
		return nil
	},
	"node_size":   floatParam(func(o *pipeline.Options, v float64) { o.Render.NodeSize = v }),
	"scale":       floatParam(func(o *pipeline.Options, v float64) { o.Render.Scale = v }),
	"show_labels": boolParam(func(o *pipeline.Options, v bool) { o.Render.ShowLabels = v }),
	"refresh":     boolParam(func(o *pipeline.Options, v bool) { o.Refresh = v }),
}

// requestOptions overlays the request's query parameters on the server
// defaults. Unknown parameters and unparsable values are INVALID_CONFIG;
// range checks happen in the pipeline.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	return parseOptions(s.cfg.Defaults, r.URL.Query())
}

func parseOptions(defaults pipeline.Options, q url.Values) (pipeline.Options, error) {
	opts := defaults
	opts.Layout.Logger = nil
	opts.Layout.OnTick = nil
	for key, values := range q {
		parse, ok := queryParams[key]
		if !ok {
			return opts, errors.New(errors.ErrCodeInvalidConfig, "unknown parameter %q", key)
		}
		if len(values) == 0 {
			continue
		}
		if err := parse(&opts, values[len(values)-1]); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parameter %s", key)
		}
	}
	return opts, nil
}
