package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/telemetry-lab/stackdiagrams/pkg/cache"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	"github.com/telemetry-lab/stackdiagrams/pkg/observability"
	"github.com/telemetry-lab/stackdiagrams/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build constructs the diagram for src and logs its size.
func (r *Runner) Build(ctx context.Context, src Source) (*diagram.Diagram, error) {
	d, err := Build(ctx, src)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("built diagram",
		"source", src.String(),
		"nodes", d.NodeCount(),
		"edges", d.EdgeCount(),
		"clusters", d.ClusterCount())
	return d, nil
}

// Render validates d, emits its DOT source and produces every requested
// format, serving artifacts from the cache where possible.
//
// A direction override in opts is applied to d before the DOT is emitted.
func (r *Runner) Render(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults(d)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "diagram %s", d.Name())
	}
	if opts.Direction != "" {
		dir, _ := diagram.ParseDirection(opts.Direction)
		d.SetDirection(dir)
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, d.Name(), opts.Formats)

	result, err := r.render(ctx, d, opts)

	elapsed := time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, d.Name(), opts.Formats, elapsed, err)
	if err != nil {
		return nil, err
	}
	result.Stats.RenderTime = elapsed

	opts.Logger.Info("rendered diagram",
		"name", d.Name(),
		"formats", opts.Formats,
		"cached", result.CacheHits,
		"duration", elapsed.Round(time.Millisecond))

	return result, nil
}

func (r *Runner) render(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	dot := nodelink.ToDOT(d, nodelink.Options{IconsDir: opts.IconsDir})
	result := &Result{
		DOT:       dot,
		Hash:      cache.Hash([]byte(dot)),
		Formats:   opts.Formats,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Stats: Stats{
			Nodes:    d.NodeCount(),
			Edges:    d.EdgeCount(),
			Clusters: d.ClusterCount(),
		},
	}

	assets := assetFingerprint(d, opts.IconsDir)
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !cacheable(format) {
			data, err := RenderFormat(ctx, d, dot, format)
			if err != nil {
				return nil, err
			}
			result.Artifacts[format] = data
			continue
		}

		data, hit, err := r.renderCached(ctx, d, dot, format,
			r.Keyer.ArtifactKey(result.Hash, opts.ArtifactKeyOpts(format, assets)), opts)
		if err != nil {
			return nil, err
		}
		if hit {
			result.CacheHits++
		}
		result.Artifacts[format] = data
	}
	return result, nil
}

// renderCached serves one artifact from the cache or renders and stores it.
// Cache failures are logged and otherwise ignored.
func (r *Runner) renderCached(ctx context.Context, d *diagram.Diagram, dot, format, key string, opts Options) ([]byte, bool, error) {
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, err := RenderFormat(ctx, d, dot, format)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		opts.Logger.Warn("cache write failed", "format", format, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
