package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
)

// WriteArtifacts writes each artifact of result to <dir>/<filename>.<format>,
// creating dir if needed. It returns the written paths in format order.
func WriteArtifacts(dir string, d *diagram.Diagram, result *Result) ([]string, error) {
	if err := errors.ValidateOutputDir(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(result.Formats))
	for _, format := range result.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := filepath.Join(dir, d.Filename()+"."+format)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
