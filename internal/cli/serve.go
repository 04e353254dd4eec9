package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/pkg/config"
	"github.com/matzehuels/forcelayout/pkg/metrics"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
	"github.com/matzehuels/forcelayout/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	noMetrics bool
	timeout   time.Duration
	maxBody   int64
	cache     cacheFlags
	layout    *layoutFlags
	render    *renderFlags
}

// serveCommand creates the serve command that exposes layouts over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	o := &serveOpts{
		timeout: server.DefaultTimeout,
		maxBody: server.DefaultMaxBodyBytes,
		layout:  newLayoutFlags(),
		render:  newRenderFlags(),
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Run an HTTP server that lays out and draws graph documents.

  POST /v1/layout   graph document in, laid-out document out
  POST /v1/render   laid-out document in, artifact out
  GET  /healthz     liveness
  GET  /metrics     Prometheus metrics

Layout flags set the server defaults; requests override them with query
parameters such as ?charge_strength=-50&iterations=200.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, o)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.addr, "addr", "", "listen address (default: config server.addr or "+config.DefaultAddr+")")
	fs.BoolVar(&o.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	fs.DurationVar(&o.timeout, "timeout", o.timeout, "per-request timeout")
	fs.Int64Var(&o.maxBody, "max-body", o.maxBody, "maximum request body in bytes")
	o.cache.register(cmd)
	o.layout.register(fs)
	o.render.register(fs)

	return cmd
}

// runServe starts the server and blocks until the command context ends.
func (c *CLI) runServe(cmd *cobra.Command, o *serveOpts) error {
	ctx := cmd.Context()

	defaults := pipeline.DefaultOptions()
	defaults.Layout = o.layout.apply(cmd.Flags(), c.Config.Layout)
	defaults.Render = o.render.apply(cmd.Flags(), c.Config.Render)
	if err := defaults.Layout.Validate(); err != nil {
		return err
	}
	if err := defaults.Render.Validate(); err != nil {
		return err
	}

	addr := o.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	runner, err := c.newRunner(ctx, o.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cfg := server.Config{
		Defaults:     defaults,
		Logger:       c.Logger,
		MaxBodyBytes: o.maxBody,
		Timeout:      o.timeout,
	}
	if !o.noMetrics {
		reg := metrics.DefaultRegistry()
		reg.Install()
		cfg.Metrics = reg
	}

	metricsPath := "disabled"
	if cfg.Metrics != nil {
		metricsPath = "/metrics"
	}
	printInfo("Serving layouts")
	printKeyValue("address", addr)
	printKeyValue("metrics", metricsPath)
	printKeyValue("timeout", cfg.Timeout.String())
	printNewline()
	return server.New(runner, cfg).ListenAndServe(ctx, addr)
}
