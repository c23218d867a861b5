// Package pipeline provides the build → DOT → render pipeline for stackdiagrams.
//
// This package implements the steps shared by the CLI and the preview
// server. By centralizing them, both entry points validate, cache and log
// renders the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Construct a diagram from a built-in topology or a definition file
//  2. DOT: Emit deterministic Graphviz source and hash it
//  3. Render: Produce each requested format, consulting the artifact cache
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	d, err := runner.Build(ctx, pipeline.Source{Name: "hld"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Render(ctx, d, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Write the artifacts next to each other:
//
//	paths, err := pipeline.WriteArtifacts("out", d, result)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/telemetry-lab/stackdiagrams/pkg/cache"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the configuration for one render.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Formats to produce. Empty means the diagram's own formats, else png.
	Formats []string `json:"formats,omitempty"`

	// Direction overrides the diagram's rank direction when set.
	Direction string `json:"direction,omitempty"`

	// IconsDir is searched for icon PNGs.
	IconsDir string `json:"icons_dir,omitempty"`

	// Refresh skips cache reads. Fresh artifacts are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills empty fields from d and the package defaults.
func (o *Options) SetDefaults(d *diagram.Diagram) {
	if len(o.Formats) == 0 && d != nil {
		o.Formats = append([]string(nil), d.Formats()...)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{render.DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks formats and the direction override.
func (o *Options) Validate() error {
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Direction != "" {
		if _, err := diagram.ParseDirection(o.Direction); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDirection, err, "direction override")
		}
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one format. assets is the
// icon fingerprint of the diagram being rendered.
func (o *Options) ArtifactKeyOpts(format, assets string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		IconsDir: o.IconsDir,
		Assets:   assets,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// DOT is the Graphviz source the artifacts were rendered from.
	DOT string

	// Hash is the SHA-256 of DOT.
	Hash string

	// Formats lists the produced formats in request order.
	Formats []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHits counts artifacts served from the cache.
	CacheHits int
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Edges      int
	Clusters   int
	RenderTime time.Duration
}

// cacheable reports whether a format is worth caching. DOT and definition
// JSON are cheaper to regenerate than to fetch.
func cacheable(format string) bool {
	return format != render.FormatDOT && format != render.FormatJSON
}
