package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/matsen/flowline/internal/formatter"
	"github.com/matsen/flowline/internal/layout"
	"github.com/matsen/flowline/internal/viz"
	"github.com/spf13/cobra"
)

var (
	layoutOutput   string
	layoutViewport viewportFlags
)

func init() {
	layoutCmd.Flags().StringVarP(&layoutOutput, "output", "o", "", "Write compact layout JSON to this file")
	addViewportFlags(layoutCmd, &layoutViewport)
	rootCmd.AddCommand(layoutCmd)
}

var layoutCmd = &cobra.Command{
	Use:   "layout [source]",
	Short: "Compute node and edge geometry",
	Long: `Load a timeline document, normalize it, and lay it out.

JSON output lists every node with its x0/x1/y0/y1 bounds (relative to the
plotting area inside the margins), its drawn rectangle, color and adjacency,
and every edge with its stroke width and curve path.

Examples:
  flowline layout timeline.json
  flowline layout https://example.com/data/projects.json --width 1600
  flowline layout timeline.json -o layout.json
  flowline layout --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	res := computeLayout(cmd, &layoutViewport, sourceArg(args, 0))

	if layoutOutput != "" {
		data, err := viz.ToJSON(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(layoutOutput, data, 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		if humanOutput {
			outputHuman("Layout written to %s\n", layoutOutput)
			return nil
		}
		return outputJSON(WrittenResponse{
			Output: layoutOutput,
			Nodes:  len(res.Graph.Nodes),
			Edges:  len(res.Graph.Edges),
		})
	}

	if !humanOutput {
		return outputJSON(viz.FromLayout(res))
	}

	printLayoutHuman(res)
	return nil
}

func printLayoutHuman(res layout.Result) {
	g := res.Graph
	if g.IsEmpty() {
		outputHuman("No projects.\n")
		return
	}

	outputHuman("%s %s to %s, %d projects, %d connections",
		formatter.StyleBold.Render("Timeline"),
		g.MinDate.Format("Jan 2006"), g.MaxDate.Format("Jan 2006"),
		len(g.Nodes), len(g.Edges))
	if len(g.Dropped) > 0 {
		outputHuman(" (%s)", formatter.StyleYellow.Render(fmt.Sprintf("%d dropped", len(g.Dropped))))
	}
	outputHuman("\n\n")

	innerWidth := res.Viewport.InnerWidth()
	rows := make([][]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		end := n.End.Format("2006-01-02")
		if !n.HasDefinedEndDate {
			end = viz.OngoingLabel
		}
		rows = append(rows, []string{
			formatter.Swatch(n.Color),
			n.ID,
			truncateString(n.Name, NameMaxLen),
			n.Start.Format("2006-01-02"),
			end,
			n.Category.String(),
			formatter.RenderBar(n.X0, n.X1, innerWidth, BarCells, n.Color),
			fmt.Sprintf("%.1f-%.1f", n.Y0, n.Y1),
			strconv.Itoa(len(n.Outgoing)),
		})
	}
	outputHuman("%s", formatter.RenderTable(
		[]string{"", "ID", "Name", "Start", "End", "Size", "Timeline", "Y", "Out"},
		rows,
	))

	outputHuman("\n%s %s to %s across %.0fpx\n",
		formatter.StyleDim.Render("Axis:"),
		res.Scale.Invert(0).Format("2006-01-02"), res.Scale.Invert(innerWidth).Format("2006-01-02"), innerWidth)
	outputHuman("%s unit %.1fpx, padding %.1fpx, stack %.1fpx\n",
		formatter.StyleDim.Render("Layout:"), res.UnitHeight, res.Padding, res.TotalHeight)
}
