package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/layout"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// jsonIndent is used by --indent.
const jsonIndent = "  "

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	input   string // -i, alternative to a positional argument
	output  string // output file; empty overwrites the input
	indent  bool   // pretty-print the output document
	jobs    int    // concurrent layouts for multiple inputs
	watch   bool   // live tick monitor
	logPerf bool   // print the simulation wall time
	refresh bool   // ignore cached layouts
	cache   cacheFlags
	layout  *layoutFlags
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	o := &layoutOpts{jobs: defaultJobs, layout: newLayoutFlags()}

	cmd := &cobra.Command{
		Use:   "layout [graph.json...]",
		Short: "Compute node positions for graph documents",
		Long: `Compute node positions for one or more graph documents.

Each document is a JSON object with a "nodes" array and an optional "links"
array whose "source"/"target" refer to node ids (or indices). The simulation
writes "x" and "y" onto every node and leaves all other fields untouched.

By default the input file is overwritten in place. Use -o to write elsewhere
(single input only) or -o - for standard output. Multiple inputs are laid out
concurrently, bounded by --jobs.

Results are cached locally, so laying out an unchanged document with the same
options again is instant.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := args
			if o.input != "" {
				inputs = append([]string{o.input}, inputs...)
			}
			return c.runLayout(cmd, inputs, o)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&o.input, "input", "i", "", "input graph document")
	fs.StringVarP(&o.output, "output", "o", "", "output file, - for stdout (default: overwrite the input)")
	fs.BoolVar(&o.indent, "indent", false, "indent the output JSON")
	fs.IntVarP(&o.jobs, "jobs", "j", o.jobs, "maximum concurrent layouts")
	fs.BoolVarP(&o.watch, "watch", "w", false, "show live simulation progress")
	fs.BoolVar(&o.logPerf, "log-perf", false, "print the simulation wall time")
	fs.BoolVar(&o.refresh, "refresh", false, "recompute even if a cached layout exists")
	o.cache.register(cmd)
	o.layout.register(fs)

	return cmd
}

// runLayout validates the invocation and lays out every input.
func (c *CLI) runLayout(cmd *cobra.Command, inputs []string, o *layoutOpts) error {
	ctx := cmd.Context()

	switch {
	case len(inputs) == 0:
		return errors.New(errors.ErrCodeInvalidConfig, "no input file given")
	case len(inputs) > 1 && o.output != "":
		return errors.New(errors.ErrCodeInvalidConfig, "--output requires a single input")
	case len(inputs) > 1 && o.watch:
		return errors.New(errors.ErrCodeInvalidConfig, "--watch requires a single input")
	case o.jobs < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "--jobs must be at least 1")
	}

	opts := pipeline.DefaultOptions()
	opts.Layout = o.layout.apply(cmd.Flags(), c.Config.Layout)
	opts.Render = c.Config.Render
	opts.Refresh = o.refresh
	if err := opts.Layout.Validate(); err != nil {
		return err
	}
	if opts.Layout.Mode == layout.ModeEvent {
		opts.Layout.OnTick = func(ev force.TickEvent) {
			c.Logger.Debug("tick", "n", ev.Tick, "alpha", ev.Alpha)
		}
	}

	runner, err := c.newRunner(ctx, o.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if len(inputs) == 1 {
		return c.layoutSingle(ctx, runner, inputs[0], opts, o)
	}
	return c.layoutMany(ctx, runner, inputs, opts, o)
}

// layoutSingle lays out one document with a spinner or the watch view.
func (c *CLI) layoutSingle(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, o *layoutOpts) error {
	output := o.output
	if output == "" {
		output = input
	}
	quiet := output == stdoutPath

	g, err := graph.ReadFile(input)
	if err != nil {
		return err
	}

	var res *layout.Result
	if o.watch {
		res, err = runWatch(ctx, runner, g, opts, input)
	} else {
		var spinner *Spinner
		if !quiet {
			spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %s...", input))
			spinner.Start()
		}
		res, err = runner.Layout(ctx, g, opts)
		if spinner != nil {
			if err != nil {
				spinner.StopWithError("Layout failed")
			} else {
				spinner.Stop()
			}
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("layout %s: %w", input, err)
	}

	if err := writeGraph(output, g, o.indent); err != nil {
		return err
	}
	if o.logPerf {
		printPerf(perfWriter(quiet), "", res)
	}
	if quiet {
		return nil
	}
	if o.logPerf && res.CacheHit {
		printWarning("Served from cache; use --refresh to time the simulation")
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Nodes, res.Links, res.Ticks, res.State, res.CacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// layoutMany lays out every input in place, at most o.jobs at a time. The
// first failure cancels the layouts still running.
func (c *CLI) layoutMany(ctx context.Context, runner *pipeline.Runner, inputs []string, opts pipeline.Options, o *layoutOpts) error {
	prog := newProgress(c.Logger)
	rows := make([]summaryRow, len(inputs))
	results := make([]*layout.Result, len(inputs))

	var finished atomic.Int32
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d graphs...", len(inputs)))
	spinner.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs)
	for i, input := range inputs {
		g.Go(func() error {
			doc, err := graph.ReadFile(input)
			if err != nil {
				return err
			}
			res, err := runner.Layout(gctx, doc, opts)
			if err != nil {
				return fmt.Errorf("layout %s: %w", input, err)
			}
			if err := writeGraph(input, doc, o.indent); err != nil {
				return err
			}
			results[i] = res
			rows[i] = summaryRow{
				path:   input,
				nodes:  res.Nodes,
				links:  res.Links,
				ticks:  res.Ticks,
				state:  res.State,
				cached: res.CacheHit,
			}
			c.Logger.Debug("laid out", "file", input, "state", res.State, "ticks", res.Ticks)
			spinner.SetMessage(fmt.Sprintf("Laying out %d graphs... (%d done)", len(inputs), finished.Add(1)))
			return nil
		})
	}
	err := g.Wait()
	spinner.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d graphs", len(inputs)))

	printSuccess("Layout complete")
	fmt.Println(summaryTable(rows))
	if o.logPerf {
		for i, res := range results {
			printPerf(os.Stdout, inputs[i], res)
		}
	}
	return nil
}

// writeGraph writes g to path, or to stdout for "-".
func writeGraph(path string, g *graph.Graph, indent bool) error {
	ind := ""
	if indent {
		ind = jsonIndent
	}
	if path == stdoutPath {
		return graph.Write(os.Stdout, g, ind)
	}
	return graph.WriteFile(path, g, ind)
}

// perfWriter keeps timing output off stdout when stdout carries the document.
func perfWriter(quiet bool) io.Writer {
	if quiet {
		return os.Stderr
	}
	return os.Stdout
}

// printPerf writes one timing line, prefixed with label when set.
func printPerf(w io.Writer, label string, res *layout.Result) {
	if label != "" {
		label += ": "
	}
	fmt.Fprintf(w, "%ssimulation wall seconds: %v\n", label, res.Elapsed.Seconds())
}
