package main

import (
	"errors"
	"strconv"

	"github.com/matsen/flowline/internal/formatter"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/uistate"
	"github.com/spf13/cobra"
)

var (
	traceDepth   int
	traceVisible []string
)

func init() {
	traceCmd.Flags().IntVar(&traceDepth, "depth", uistate.DefaultMaxDepth, "Maximum number of hops to follow")
	traceCmd.Flags().StringSliceVar(&traceVisible, "visible", nil, "Restrict the trace to these project ids")
	rootCmd.AddCommand(traceCmd)
}

var traceCmd = &cobra.Command{
	Use:   "trace <id> [source]",
	Short: "Plan the highlight sequence starting at a project",
	Long: `Plan how a highlight flows from one project along its outgoing connections.

The plan is a sequence of steps: highlight_node marks a project, animate_edges
animates the connections leaving it, and a final idle step ends the sequence.
Each project is highlighted once, so cycles terminate.

Examples:
  flowline trace api-v2 timeline.json
  flowline trace api-v2 --depth 2 --human`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTrace,
}

// TraceResult is the response for the trace command.
type TraceResult struct {
	Start string         `json:"start"`
	Depth int            `json:"max_depth"`
	Steps []uistate.Step `json:"steps"`
	Nodes []string       `json:"highlighted"`
}

func runTrace(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph(cmd, sourceArg(args, 1))

	state := uistate.New(g)
	if len(traceVisible) > 0 {
		state.ApplyFilter(traceVisible)
	}

	steps, err := state.PlanHighlight(args[0], traceDepth)
	if err != nil {
		if errors.Is(err, uistate.ErrUnknownNode) || errors.Is(err, uistate.ErrHiddenNode) {
			exitWithError(ExitError, "%v", err)
		}
		return err
	}

	result := TraceResult{Start: args[0], Depth: traceDepth, Steps: steps, Nodes: highlighted(steps)}
	if humanOutput {
		printTrace(g, result)
		return nil
	}
	return outputJSON(result)
}

func highlighted(steps []uistate.Step) []string {
	ids := []string{}
	for _, s := range steps {
		if s.Phase == uistate.PhaseHighlightNode {
			ids = append(ids, s.NodeID)
		}
	}
	return ids
}

func printTrace(g *graph.Graph, r TraceResult) {
	for i, s := range r.Steps {
		switch s.Phase {
		case uistate.PhaseHighlightNode:
			n := g.Node(s.NodeID)
			outputHuman("%3d  %s %s %s\n", i+1, formatter.Swatch(n.Color), n.Name,
				formatter.StyleDim.Render("(depth "+strconv.Itoa(s.Depth)+")"))
		case uistate.PhaseAnimateEdges:
			for _, ei := range s.Edges {
				e := g.Edges[ei]
				outputHuman("%3d    %s → %s\n", i+1, e.Source.Name, e.Target.Name)
			}
		case uistate.PhaseIdle:
			outputHuman("%3d  %s\n", i+1, formatter.StyleDim.Render("idle"))
		}
	}
}
