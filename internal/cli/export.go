package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	diagramio "github.com/telemetry-lab/stackdiagrams/pkg/io"
	"github.com/telemetry-lab/stackdiagrams/pkg/topology"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output, direction string

	cmd := &cobra.Command{
		Use:   "export <diagram>",
		Short: "Write a built-in diagram as an editable definition file",
		Long: `Write a built-in diagram as a JSON, TOML or YAML definition.

The format follows the output file's extension. Edit the file and render it
with "stackdiagrams render --file".`,
		Example:           `  stackdiagrams export hld -o hld.yaml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDiagramNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if output == "" {
				output = name + ".json"
			}

			d, err := topology.Build(name)
			if err != nil {
				return err
			}
			if direction != "" {
				dir, err := diagram.ParseDirection(direction)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidDirection, err, "direction override")
				}
				d.SetDirection(dir)
			}
			if err := diagramio.Export(d, output); err != nil {
				return err
			}

			c.Logger.Debug("exported definition", "diagram", name, "path", output)
			p := newPrinter(cmd.OutOrStdout())
			p.success("Exported %s", name)
			p.file(output)
			p.nextStep("Render it", fmt.Sprintf("%s render --file %s", appName, filepath.Clean(output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json, .toml, .yaml; default <diagram>.json)")
	cmd.Flags().StringVar(&direction, "direction", "", "rank direction to store: TB, BT, LR, RL")
	return cmd
}
