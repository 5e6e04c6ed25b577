package main

import (
	"fmt"
	"sort"

	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/formatter"
	"github.com/matsen/flowline/internal/graph"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [source]",
	Short: "Verify a timeline document",
	Long: `Load and normalize a timeline document and report problems.

Record-level problems (missing fields, bad dates, duplicate ids) make the
document unusable and exit with code 3. Connection-level problems (unknown
endpoints, invalid values, duplicates) and reversed date ranges are reported
as issues; the timeline still renders without them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status      string       `json:"status"`
	Projects    int          `json:"projects"`
	Connections int          `json:"connections"`
	Edges       int          `json:"edges"`
	Issues      []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph(cmd, sourceArg(args, 0))
	result := checkGraph(g)

	if !humanOutput {
		return outputJSON(result)
	}

	if len(result.Issues) == 0 {
		outputHuman("Timeline check: %s\n\n", formatter.StyleGreen.Render("OK"))
	} else {
		outputHuman("Timeline check: %d issues found\n\n", len(result.Issues))
		for _, issue := range result.Issues {
			switch issue.Type {
			case graph.DiagEndBeforeStart:
				outputHuman("  %s End before start: %s (%s)\n\n", formatter.Severity("warn"), issue.ID, issue.Reason)
			default:
				outputHuman("  %s %s: %s --> %s (%s)\n\n", formatter.Severity("warn"), issueTitle(issue.Type), issue.Source, issue.Target, issue.Reason)
			}
		}
	}
	outputHuman("%d projects, %d connections checked, %d edges drawn\n", result.Projects, result.Connections, result.Edges)
	return nil
}

// checkGraph turns normalization diagnostics and duplicate connections into issues.
func checkGraph(g *graph.Graph) CheckResult {
	connections := len(g.Edges) + len(g.Dropped)
	issues := []CheckIssue{}

	for _, d := range g.Diagnostics {
		issues = append(issues, CheckIssue{
			Type:   d.Kind,
			ID:     d.ID,
			Source: d.Source,
			Target: d.Target,
			Reason: d.Message,
		})
	}

	resolved := make([]edge.Connection, 0, len(g.Edges))
	for _, e := range g.Edges {
		resolved = append(resolved, edge.Connection{Source: e.Source.ID, Target: e.Target.ID, Value: e.Value})
	}
	duplicates := edge.FindDuplicateConnections(resolved)
	keys := make([]edge.Key, 0, len(duplicates))
	for key := range duplicates {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Target < keys[j].Target
	})
	for _, key := range keys {
		issues = append(issues, CheckIssue{
			Type:   "duplicate_connection",
			Source: key.Source,
			Target: key.Target,
			Reason: fmt.Sprintf("count=%d", duplicates[key]),
		})
	}

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}
	return CheckResult{
		Status:      status,
		Projects:    len(g.Nodes),
		Connections: connections,
		Edges:       len(g.Edges),
		Issues:      issues,
	}
}

func issueTitle(kind string) string {
	switch kind {
	case graph.DiagDroppedConnection:
		return "Dropped connection"
	case graph.DiagInvalidValue:
		return "Invalid value"
	case "duplicate_connection":
		return "Duplicate connection"
	default:
		return kind
	}
}
