// Package cli implements the stackdiagrams command-line interface.
//
// This package provides commands for rendering the observability stack's
// architecture diagrams, exporting them as editable definition files,
// validating definitions, serving previews over HTTP and managing the render
// cache. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - list: Show the built-in diagrams
//   - render: Generate PNG, SVG, JPG, PDF, DOT or JSON output
//   - export: Write a built-in diagram as a JSON, TOML or YAML definition
//   - validate: Check a definition file
//   - serve: Preview diagrams in a browser
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// turns on the pipeline and cache event hooks.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/telemetry-lab/stackdiagrams/pkg/buildinfo"
	"github.com/telemetry-lab/stackdiagrams/pkg/cache"
	"github.com/telemetry-lab/stackdiagrams/pkg/observability"
	"github.com/telemetry-lab/stackdiagrams/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackdiagrams"

	// envCacheURL selects a shared cache backend (redis://, mongodb://, file://).
	envCacheURL = "STACKDIAGRAMS_CACHE_URL"

	// envIconsDir points at a directory of icon PNGs.
	envIconsDir = "STACKDIAGRAMS_ICONS_DIR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline and
// cache hooks are routed to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.SetPipelineHooks(observability.NewLogPipelineHooks(c.Logger))
		observability.SetCacheHooks(observability.NewLogCacheHooks(c.Logger))
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stackdiagrams draws the observability stack's architecture diagrams",
		Long:         `Stackdiagrams renders the architecture diagrams of the OpenTelemetry observability stack (collectors, Prometheus, Tempo, Loki, Grafana and the demo applications) with Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.listCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are shared by commands that render.
type cacheFlags struct {
	noCache  bool
	cacheURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().StringVar(&f.cacheURL, "cache-url", os.Getenv(envCacheURL), "cache backend URL (redis://, mongodb://, file://; env "+envCacheURL+")")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// openCache opens the configured backend. An unusable user cache directory
// disables caching instead of failing the command.
func (c *CLI) openCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		dir = ""
	}
	return cache.Open(ctx, f.cacheURL, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stackdiagrams/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultIconsDir returns the icon directory from the environment.
func defaultIconsDir() string {
	return os.Getenv(envIconsDir)
}
