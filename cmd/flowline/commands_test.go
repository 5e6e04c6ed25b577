package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matsen/flowline/internal/config"
	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/layout"
	"github.com/matsen/flowline/internal/loader"
	"github.com/matsen/flowline/internal/project"
	"github.com/matsen/flowline/internal/skillindex"
	"github.com/matsen/flowline/internal/uistate"
	"github.com/spf13/cobra"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	doc := &graph.Document{
		Projects: []project.Record{
			{ID: "a", Name: "Alpha", StartDate: "2023-01-01", EndDate: "2023-03-01", Skills: []string{"go", "sql"}},
			{ID: "b", Name: "Beta", StartDate: "2023-02-01", EndDate: "2023-01-01", Skills: []string{"go"}},
			{ID: "c", Name: "Gamma", StartDate: "2023-04-01", Skills: []string{"rust"}},
		},
		Connections: []edge.Connection{
			{Source: "a", Target: "b", Value: 10},
			{Source: "a", Target: "b", Value: 3},
			{Source: "b", Target: "c", Value: -4},
			{Source: "c", Target: "zzz", Value: 1},
		},
	}
	g, err := graph.Normalize(doc, graph.Options{Now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return g
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"no data source", config.ErrNoDataSource, ExitConfigError},
		{"invalid config", fmt.Errorf("loading: %w", config.ErrInvalidConfig), ExitConfigError},
		{"load failure", fmt.Errorf("%w: HTTP 404", loader.ErrLoad), ExitDataError},
		{"bad record", fmt.Errorf("%w: project 0: %w", graph.ErrInvalidDocument, project.ErrInvalidDate), ExitDataError},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a bit too long", 10, "a bit t..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestCheckGraph(t *testing.T) {
	result := checkGraph(testGraph(t))

	if result.Status != "issues" {
		t.Errorf("Status = %q, want issues", result.Status)
	}
	if result.Projects != 3 || result.Connections != 4 || result.Edges != 3 {
		t.Errorf("counts = %d projects, %d connections, %d edges", result.Projects, result.Connections, result.Edges)
	}

	types := map[string]int{}
	for _, issue := range result.Issues {
		types[issue.Type]++
	}
	want := map[string]int{
		graph.DiagEndBeforeStart:    1,
		graph.DiagDroppedConnection: 1,
		graph.DiagInvalidValue:      1,
		"duplicate_connection":      1,
	}
	for k, v := range want {
		if types[k] != v {
			t.Errorf("issues of type %s = %d, want %d (all: %v)", k, types[k], v, types)
		}
	}
}

func TestFilterBySkills(t *testing.T) {
	g := testGraph(t)
	idx, err := skillindex.Build(g)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer idx.Close()

	anyResult, err := filterBySkills(g, idx, []string{"go"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(anyResult.Visible) != "[a b]" || fmt.Sprint(anyResult.Hidden) != "[c]" {
		t.Errorf("any go: visible %v hidden %v", anyResult.Visible, anyResult.Hidden)
	}
	if fmt.Sprint(anyResult.Edges) != "[0 1]" {
		t.Errorf("any go: edges %v, want [0 1]", anyResult.Edges)
	}

	allResult, err := filterBySkills(g, idx, nil, []string{"go", "sql"})
	if err != nil {
		t.Fatal(err)
	}
	if allResult.Mode != "all" || fmt.Sprint(allResult.Visible) != "[a]" {
		t.Errorf("all go,sql: mode %s visible %v", allResult.Mode, allResult.Visible)
	}
	if len(allResult.Edges) != 0 {
		t.Errorf("all go,sql: edges %v, want none", allResult.Edges)
	}
}

func TestViewportFlags(t *testing.T) {
	var f viewportFlags
	cmd := &cobra.Command{Use: "test"}
	addViewportFlags(cmd, &f)
	if err := cmd.Flags().Parse([]string{"--width", "900", "--margin-left", "0"}); err != nil {
		t.Fatal(err)
	}

	base := layout.Viewport{Width: 500, Height: 300, Margin: layout.Margins{Top: 5, Left: 7}}
	vp := f.viewport(cmd, base)

	if vp.Width != 900 {
		t.Errorf("Width = %v, want flag value 900", vp.Width)
	}
	if vp.Height != 300 || vp.Margin.Top != 5 {
		t.Errorf("unset flags should keep the configured values, got %+v", vp)
	}
	if vp.Margin.Left != 0 {
		t.Errorf("Margin.Left = %v, want explicit 0", vp.Margin.Left)
	}
}

func TestConfigKeys(t *testing.T) {
	cfg := &config.GlobalConfig{}

	if err := setConfigValue(cfg, "log_level", "DEBUG"); err != nil {
		t.Fatal(err)
	}
	if got, _ := configValue(cfg, "log-level"); got != "debug" {
		t.Errorf("log-level = %q, want debug", got)
	}

	if err := setConfigValue(cfg, "data", "t.json"); err != nil {
		t.Fatal(err)
	}
	if got, _ := configValue(cfg, "DATA"); got != "t.json" {
		t.Errorf("data = %q, want t.json", got)
	}

	if err := setConfigValue(cfg, "colour", "red"); err == nil {
		t.Error("setConfigValue() should reject unknown keys")
	}
}

func TestHighlighted(t *testing.T) {
	steps := []uistate.Step{
		{Phase: uistate.PhaseHighlightNode, NodeID: "a"},
		{Phase: uistate.PhaseAnimateEdges, NodeID: "a", Edges: []int{0}},
		{Phase: uistate.PhaseHighlightNode, NodeID: "b", Depth: 1},
		{Phase: uistate.PhaseIdle},
	}
	if got := fmt.Sprint(highlighted(steps)); got != "[a b]" {
		t.Errorf("highlighted() = %s, want [a b]", got)
	}
	if got := highlighted(nil); got == nil || len(got) != 0 {
		t.Errorf("highlighted(nil) = %v, want empty slice", got)
	}
}
