package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
	"github.com/telemetry-lab/stackdiagrams/pkg/topology"
)

// diagramSummary is one row of the diagram listing.
type diagramSummary struct {
	Name      string            `json:"name"`
	Direction diagram.Direction `json:"direction"`
	Nodes     int               `json:"nodes"`
	Edges     int               `json:"edges"`
	Clusters  int               `json:"clusters"`
	Formats   []string          `json:"formats"`
}

// summarize builds every registered diagram and collects its counts.
func summarize() ([]diagramSummary, error) {
	names := topology.Names()
	out := make([]diagramSummary, 0, len(names))
	for _, name := range names {
		d, err := topology.Build(name)
		if err != nil {
			return nil, err
		}
		formats := d.Formats()
		if len(formats) == 0 {
			formats = []string{render.DefaultFormat}
		}
		out = append(out, diagramSummary{
			Name:      name,
			Direction: d.Direction(),
			Nodes:     d.NodeCount(),
			Edges:     d.EdgeCount(),
			Clusters:  d.ClusterCount(),
			Formats:   formats,
		})
	}
	return out, nil
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in diagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := summarize()
			if err != nil {
				return err
			}
			if plain {
				writePlainList(cmd.OutOrStdout(), rows)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), diagramTable(rows, -1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print tab-separated rows without styling")
	return cmd
}

func writePlainList(w io.Writer, rows []diagramSummary) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", r.Name, r.Nodes, r.Edges, r.Clusters, strings.Join(r.Formats, ","))
	}
}

// diagramTable renders rows as a bordered table. The row at cursor is
// highlighted; pass -1 for none.
func diagramTable(rows []diagramSummary, cursor int) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		data[i] = []string{
			marker + r.Name,
			string(r.Direction),
			strconv.Itoa(r.Nodes),
			strconv.Itoa(r.Edges),
			strconv.Itoa(r.Clusters),
			strings.Join(r.Formats, ", "),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Diagram", "Dir", "Nodes", "Edges", "Clusters", "Formats").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col >= 2 && col <= 4:
				return StyleNumber
			case col == 1 || col == 5:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
