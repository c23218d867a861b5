package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	diagramio "github.com/telemetry-lab/stackdiagrams/pkg/io"
	"github.com/telemetry-lab/stackdiagrams/pkg/render/nodelink"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var checkDOT bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a diagram definition file",
		Long: `Import a JSON, TOML or YAML definition and check its structure: unique
IDs, known icons, declared parents and edge endpoints. With --dot the emitted
Graphviz source is also parsed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := diagramio.Import(args[0])
			if err != nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}
			if checkDOT {
				if err := nodelink.Check(nodelink.ToDOT(d, nodelink.Options{})); err != nil {
					return err
				}
			}

			formats := d.Formats()
			if len(formats) == 0 {
				formats = []string{"(default)"}
			}

			p := newPrinter(cmd.OutOrStdout())
			p.success("%s is valid", args[0])
			p.keyValue("Name", d.Name())
			p.keyValue("Filename", d.Filename())
			p.keyValue("Direction", string(d.Direction()))
			p.keyValue("Nodes", strconv.Itoa(d.NodeCount()))
			p.keyValue("Edges", strconv.Itoa(d.EdgeCount()))
			p.keyValue("Clusters", strconv.Itoa(d.ClusterCount()))
			p.keyValue("Formats", strings.Join(formats, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkDOT, "dot", false, "also parse the generated DOT with Graphviz")
	return cmd
}
