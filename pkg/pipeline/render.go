package pipeline

import (
	"context"
	"fmt"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	diagramio "github.com/telemetry-lab/stackdiagrams/pkg/io"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
	"github.com/telemetry-lab/stackdiagrams/pkg/render/nodelink"
)

// RenderFormat produces a single artifact without caching.
// FormatJSON is the definition of d; every other format is rendered from dot.
func RenderFormat(ctx context.Context, d *diagram.Diagram, dot, format string) ([]byte, error) {
	if format == render.FormatJSON {
		data, err := diagramio.MarshalJSON(d)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		return data, nil
	}
	data, err := nodelink.Render(ctx, dot, format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
