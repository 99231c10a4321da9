package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// showCommand creates the "show" command, which lists nodes in paint order.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "List the nodes of a scene in paint order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				var views []nodeRow
				ws.View(func(c *scene.GeometryCache) { views = nodeRows(c) })
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			ws.View(func(c *scene.GeometryCache) {
				fmt.Fprintln(out, sceneTable(c))
				fmt.Fprintln(out, sceneStats(c))
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print nodes as JSON instead of a table")
	return cmd
}

// nodeRow is one node as listed by show and inspect.
type nodeRow struct {
	Z         int          `json:"z"`
	ID        scene.NodeID `json:"id"`
	Label     string       `json:"label,omitempty"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Inputs    int          `json:"inputs"`
	Connected int          `json:"connected"`
	Sources   []string     `json:"sources,omitempty"`
}

// nodeRows lists c bottom to top.
func nodeRows(c *scene.GeometryCache) []nodeRow {
	rows := make([]nodeRow, 0, c.Len())
	c.Each(func(id scene.NodeID, n *scene.Node) {
		r := nodeRow{
			Z:      len(rows),
			ID:     id,
			Label:  n.Label,
			X:      n.Position.X(),
			Y:      n.Position.Y(),
			Inputs: len(n.Inputs),
		}
		for _, in := range n.Inputs {
			if !in.Connected() {
				continue
			}
			r.Connected++
			src := string(in.Source)
			if !c.Has(in.Source) {
				src += "?"
			}
			r.Sources = append(r.Sources, src)
		}
		rows = append(rows, r)
	})
	return rows
}

// sceneTable renders c as a bordered table. A trailing "?" on a source marks
// a node that is not in the scene.
func sceneTable(c *scene.GeometryCache) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := nodeRows(c)
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			fmt.Sprintf("%d", r.Z),
			string(r.ID),
			r.Label,
			fmt.Sprintf("%g, %g", r.X, r.Y),
			fmt.Sprintf("%d/%d", r.Connected, r.Inputs),
			strings.Join(r.Sources, ", "),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Z", "ID", "Label", "Position", "Wired", "Sources").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorDim)
			case 1:
				return base.Foreground(colorCyan)
			case 5:
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render()
}

// sceneStats summarizes c on one line.
func sceneStats(c *scene.GeometryCache) string {
	parts := []string{
		fmt.Sprintf("%d nodes", c.Len()),
		fmt.Sprintf("%d wires", wireCount(c)),
		"camera " + fmtMat(c.Camera),
	}
	return "  " + StyleDim.Render(strings.Join(parts, " · "))
}
