package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file; default <input>.<format>, - for stdout
	refresh bool
	cache   cacheFlags
	render  *renderFlags
}

// renderCommand creates the render command for drawing laid-out documents.
func (c *CLI) renderCommand() *cobra.Command {
	o := &renderOpts{render: newRenderFlags()}

	cmd := &cobra.Command{
		Use:   "render [laid-out.json]",
		Short: "Draw a laid-out graph document",
		Long: `Draw a graph document whose nodes already carry x and y (as written by
'layout'). Positions are kept exactly; Graphviz only draws.

Formats: svg (default), dot, png, pdf. PNG and PDF need rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file, - for stdout (default: <input>.<format>)")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "redraw even if a cached artifact exists")
	o.cache.register(cmd)
	o.render.register(cmd.Flags())

	return cmd
}

// runRender loads the document, draws it, and writes the artifact.
func (c *CLI) runRender(cmd *cobra.Command, input string, o *renderOpts) error {
	ctx := cmd.Context()

	opts := pipeline.DefaultOptions()
	opts.Render = o.render.apply(cmd.Flags(), c.Config.Render)
	opts.Refresh = o.refresh
	if err := opts.Render.Validate(); err != nil {
		return err
	}

	g, err := graph.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, o.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	output := outputPath(o.output, input, opts.Render.Format)
	quiet := output == stdoutPath

	var spinner *Spinner
	if !quiet {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.ToUpper(opts.Render.Format)))
		spinner.Start()
	}
	data, cached, err := runner.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Render failed")
		}
		return fmt.Errorf("render %s: %w", input, err)
	}

	if quiet {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		spinner.Stop()
		return fmt.Errorf("write %s: %w", output, err)
	}

	spinner.StopWithSuccess("Rendered " + strings.ToUpper(opts.Render.Format))
	printFile(output)
	c.Logger.Debug("rendered", "file", output, "bytes", len(data), "cached", cached)
	return nil
}

// outputPath derives the artifact path. Without -o the input's extension is
// replaced by the format.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
