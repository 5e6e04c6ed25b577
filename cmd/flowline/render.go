package main

import (
	"fmt"
	"os"

	"github.com/matsen/flowline/internal/viz"
	"github.com/spf13/cobra"
)

var (
	renderOutput   string
	renderTitle    string
	renderViewport viewportFlags
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderTitle, "title", viz.DefaultOptions().Title, "Page title")
	addViewportFlags(renderCmd, &renderViewport)
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [source]",
	Short: "Render the timeline as a static HTML page",
	Long: `Render the laid-out timeline as a self-contained HTML page with an inline SVG
chart and a details table listing each project's incoming and outgoing
connections.

Examples:
  # Generate HTML to stdout
  flowline render timeline.json > timeline.html

  # Generate to file
  flowline render timeline.json --output timeline.html --title "Team roadmap"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	res := computeLayout(cmd, &renderViewport, sourceArg(args, 0))

	html, err := viz.GenerateHTML(res, viz.HTMLOptions{Title: renderTitle})
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if renderOutput == "" {
		fmt.Print(html)
		return nil
	}

	if err := os.WriteFile(renderOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	if humanOutput {
		outputHuman("Timeline written to %s\n", renderOutput)
		return nil
	}
	return outputJSON(WrittenResponse{
		Output: renderOutput,
		Nodes:  len(res.Graph.Nodes),
		Edges:  len(res.Graph.Edges),
	})
}
