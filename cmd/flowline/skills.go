package main

import (
	"strconv"
	"strings"

	"github.com/matsen/flowline/internal/formatter"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/skillindex"
	"github.com/matsen/flowline/internal/uistate"
	"github.com/spf13/cobra"
)

var (
	skillsAny []string
	skillsAll []string
)

func init() {
	skillsCmd.Flags().StringSliceVar(&skillsAny, "any", nil, "Show projects having any of these skills")
	skillsCmd.Flags().StringSliceVar(&skillsAll, "all", nil, "Show projects having all of these skills")
	skillsCmd.MarkFlagsMutuallyExclusive("any", "all")
	rootCmd.AddCommand(skillsCmd)
}

var skillsCmd = &cobra.Command{
	Use:   "skills [source]",
	Short: "List skills or filter projects by skill",
	Long: `Without filters, list every skill with the number of projects using it.

With --any or --all, apply the skill filter and report which projects and
connections stay visible. A connection is visible only when both of its
projects are.

Examples:
  flowline skills timeline.json
  flowline skills timeline.json --any go,rust
  flowline skills --all go,sql --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSkills,
}

// SkillsFilterResult is the response for a filtered skills query.
type SkillsFilterResult struct {
	Mode    string   `json:"mode"`
	Skills  []string `json:"skills"`
	Visible []string `json:"visible"`
	Hidden  []string `json:"hidden"`
	Edges   []int    `json:"edges"`
}

func runSkills(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph(cmd, sourceArg(args, 0))

	idx, err := skillindex.Build(g)
	if err != nil {
		exitWithError(ExitError, "building skill index: %v", err)
	}
	defer idx.Close()

	if len(skillsAny) == 0 && len(skillsAll) == 0 {
		counts, err := idx.Skills()
		if err != nil {
			exitWithError(ExitError, "listing skills: %v", err)
		}
		if humanOutput {
			printSkillCounts(counts)
			return nil
		}
		return outputJSON(counts)
	}

	result, err := filterBySkills(g, idx, skillsAny, skillsAll)
	if err != nil {
		exitWithError(ExitError, "filtering skills: %v", err)
	}

	if humanOutput {
		printSkillFilter(g, result)
		return nil
	}
	return outputJSON(result)
}

// filterBySkills applies an any/all skill filter to a fresh view state.
func filterBySkills(g *graph.Graph, idx *skillindex.Index, anyOf, allOf []string) (SkillsFilterResult, error) {
	result := SkillsFilterResult{Mode: "any", Skills: anyOf}

	var ids []string
	var err error
	if len(allOf) > 0 {
		result.Mode, result.Skills = "all", allOf
		ids, err = idx.NodesWithAll(allOf)
	} else {
		ids, err = idx.NodesWithAny(anyOf)
	}
	if err != nil {
		return result, err
	}

	state := uistate.New(g)
	state.ApplyFilter(ids)

	result.Visible = []string{}
	result.Hidden = []string{}
	for _, n := range g.Nodes {
		if state.IsVisible(n.ID) {
			result.Visible = append(result.Visible, n.ID)
		} else {
			result.Hidden = append(result.Hidden, n.ID)
		}
	}

	result.Edges = []int{}
	for _, e := range state.VisibleEdges() {
		result.Edges = append(result.Edges, e.Index)
	}
	return result, nil
}

func printSkillCounts(counts []skillindex.SkillCount) {
	if len(counts) == 0 {
		outputHuman("No skills listed.\n")
		return
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Skill, strconv.Itoa(c.Count)})
	}
	outputHuman("%s", formatter.RenderTable([]string{"Skill", "Projects"}, rows))
}

func printSkillFilter(g *graph.Graph, r SkillsFilterResult) {
	outputHuman("Filter (%s): %s\n\n", r.Mode, strings.Join(r.Skills, ", "))
	if len(r.Visible) == 0 {
		outputHuman("No matching projects.\n")
		return
	}

	rows := make([][]string, 0, len(r.Visible))
	for _, id := range r.Visible {
		n := g.Node(id)
		rows = append(rows, []string{
			formatter.Swatch(n.Color),
			n.ID,
			truncateString(n.Name, NameMaxLen),
			truncateString(strings.Join(n.Skills, ", "), SkillsMaxLen),
		})
	}
	outputHuman("%s", formatter.RenderTable([]string{"", "ID", "Name", "Skills"}, rows))
	outputHuman("\n%d visible, %d hidden, %d connections shown\n", len(r.Visible), len(r.Hidden), len(r.Edges))
}
