package pipeline

import (
	"context"
	"time"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	diagramio "github.com/telemetry-lab/stackdiagrams/pkg/io"
	"github.com/telemetry-lab/stackdiagrams/pkg/observability"
	"github.com/telemetry-lab/stackdiagrams/pkg/topology"
)

// Source names where a diagram comes from: a built-in topology or a
// definition file. Exactly one field must be set.
type Source struct {
	Name string `json:"name,omitempty"`
	File string `json:"file,omitempty"`
}

// String returns the name or file path.
func (s Source) String() string {
	if s.File != "" {
		return s.File
	}
	return s.Name
}

// Build constructs the diagram for src.
func Build(ctx context.Context, src Source) (*diagram.Diagram, error) {
	if (src.Name == "") == (src.File == "") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "exactly one of diagram name or file is required")
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, src.String())

	var d *diagram.Diagram
	var err error
	if src.File != "" {
		d, err = diagramio.Import(src.File)
	} else {
		d, err = topology.Build(src.Name)
	}

	nodes, edges := 0, 0
	if d != nil {
		nodes, edges = d.NodeCount(), d.EdgeCount()
	}
	observability.Pipeline().OnBuildComplete(ctx, src.String(), nodes, edges, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return d, nil
}
