package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	"github.com/telemetry-lab/stackdiagrams/pkg/pipeline"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
	"github.com/telemetry-lab/stackdiagrams/pkg/topology"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output directory
	formats     string   // comma-separated formats; empty means the diagram's own
	files       []string // definition files rendered in addition to named diagrams
	direction   string   // rank direction override
	iconsDir    string   // directory of icon PNGs
	show        bool     // open the first artifact after rendering
	refresh     bool     // bypass cache reads
	interactive bool     // pick diagrams with the TUI
	cache       cacheFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: "."}

	cmd := &cobra.Command{
		Use:   "render [diagram...]",
		Short: "Render diagrams to PNG, SVG, JPG, PDF, DOT or JSON",
		Long: `Render built-in diagrams or definition files with Graphviz.

With no arguments every built-in diagram is rendered. Each artifact is written
to <output>/<filename>.<format>.`,
		Example: `  stackdiagrams render hld -f svg,png
  stackdiagrams render --file mystack.yaml -o out --direction LR
  stackdiagrams render -i --show`,
		ValidArgsFunction: completeDiagramNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := c.renderSources(cmd, args, opts)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return nil
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), sources, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated: png, svg, jpg, pdf, dot, json (default: diagram formats, else png)")
	cmd.Flags().StringSliceVar(&opts.files, "file", nil, "definition file (.json, .toml, .yaml) to render; repeatable")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "rank direction override: TB, BT, LR, RL")
	cmd.Flags().StringVar(&opts.iconsDir, "icons-dir", defaultIconsDir(), "directory of icon PNGs (env "+envIconsDir+")")
	cmd.Flags().BoolVar(&opts.show, "show", false, "open the first artifact with the system viewer")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "choose diagrams interactively")
	opts.cache.register(cmd)

	return cmd
}

// renderSources resolves positional names, --file and the picker into the
// list of diagrams to render.
func (c *CLI) renderSources(cmd *cobra.Command, args []string, opts renderOpts) ([]pipeline.Source, error) {
	names := args
	if opts.interactive && len(args) == 0 {
		picked, err := pickDiagram(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return nil, err
		}
		if picked == "" {
			return nil, nil
		}
		names = []string{picked}
	} else if len(args) == 0 && len(opts.files) == 0 {
		names = topology.Names()
	}

	sources := make([]pipeline.Source, 0, len(names)+len(opts.files))
	for _, name := range names {
		if _, ok := topology.Lookup(name); !ok {
			return nil, errors.New(errors.ErrCodeDiagramNotFound, "unknown diagram %q (available: %v)", name, topology.Names())
		}
		sources = append(sources, pipeline.Source{Name: name})
	}
	for _, file := range opts.files {
		sources = append(sources, pipeline.Source{File: file})
	}
	return sources, nil
}

// runRender builds, renders and writes every source in order. The first
// failure stops the run.
func (c *CLI) runRender(ctx context.Context, stdout, stderr io.Writer, sources []pipeline.Source, opts renderOpts) error {
	formats, err := render.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	p := newPrinter(stdout)
	prog := newProgress(c.Logger)
	var written []string

	for _, src := range sources {
		paths, err := c.renderOne(ctx, runner, p, stderr, src, formats, opts)
		if err != nil {
			p.errorf("%s: %s", src, errors.UserMessage(err))
			return err
		}
		written = append(written, paths...)
	}
	prog.done(fmt.Sprintf("Rendered %d diagram(s)", len(sources)))

	if opts.show && len(written) > 0 {
		if err := openFile(written[0]); err != nil {
			p.warning("could not open %s: %v", written[0], err)
		}
	}
	return nil
}

func (c *CLI) renderOne(ctx context.Context, runner *pipeline.Runner, p printer, stderr io.Writer, src pipeline.Source, formats []string, opts renderOpts) ([]string, error) {
	spinner := newSpinner(ctx, stderr, fmt.Sprintf("Rendering %s...", src))
	spinner.Start()

	start := time.Now()
	d, err := runner.Build(ctx, src)
	if err != nil {
		spinner.Stop()
		return nil, err
	}

	result, err := runner.Render(ctx, d, pipeline.Options{
		Formats:   formats,
		Direction: opts.direction,
		IconsDir:  opts.iconsDir,
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	})
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	paths, err := pipeline.WriteArtifacts(opts.output, d, result)
	if err != nil {
		return nil, err
	}

	p.success("%s", d.Name())
	for _, path := range paths {
		p.file(path)
	}
	p.stats(result.Stats.Nodes, result.Stats.Edges, result.Stats.Clusters, result.CacheHits, time.Since(start))
	return paths, nil
}
