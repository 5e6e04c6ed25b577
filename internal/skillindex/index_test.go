package skillindex

import (
	"reflect"
	"testing"
	"time"

	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/project"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	doc := &graph.Document{Projects: []project.Record{
		{ID: "api", Name: "API", StartDate: "2023-01-01", EndDate: "2023-03-01", Skills: []string{"go", "sql"}},
		{ID: "web", Name: "Web", StartDate: "2023-02-01", EndDate: "2023-04-01", Skills: []string{"typescript", "css"}},
		{ID: "etl", Name: "ETL", StartDate: "2023-03-01", EndDate: "2023-05-01", Skills: []string{"go", "sql", "airflow"}},
		{ID: "ops", Name: "Ops", StartDate: "2023-04-01", EndDate: "2023-06-01"},
	}}
	g, err := graph.Normalize(doc, graph.Options{Now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	idx, err := Build(g)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndex_Skills(t *testing.T) {
	idx := testIndex(t)

	skills, err := idx.Skills()
	if err != nil {
		t.Fatalf("Skills() error = %v", err)
	}

	want := []SkillCount{
		{Skill: "go", Count: 2},
		{Skill: "sql", Count: 2},
		{Skill: "airflow", Count: 1},
		{Skill: "css", Count: 1},
		{Skill: "typescript", Count: 1},
	}
	if !reflect.DeepEqual(skills, want) {
		t.Errorf("Skills() = %v, want %v", skills, want)
	}
}

func TestIndex_NodesWithAny(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name   string
		skills []string
		want   []string
	}{
		{"single skill", []string{"go"}, []string{"api", "etl"}},
		{"either skill", []string{"css", "airflow"}, []string{"web", "etl"}},
		{"unknown skill", []string{"rust"}, []string{}},
		{"no filter", nil, []string{"api", "web", "etl", "ops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.NodesWithAny(tt.skills)
			if err != nil {
				t.Fatalf("NodesWithAny() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NodesWithAny(%v) = %v, want %v", tt.skills, got, tt.want)
			}
		})
	}
}

func TestIndex_NodesWithAll(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name   string
		skills []string
		want   []string
	}{
		{"both skills", []string{"go", "sql"}, []string{"api", "etl"}},
		{"three skills", []string{"go", "sql", "airflow"}, []string{"etl"}},
		{"repeated skill", []string{"go", "go"}, []string{"api", "etl"}},
		{"disjoint skills", []string{"go", "css"}, []string{}},
		{"no filter", []string{}, []string{"api", "web", "etl", "ops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.NodesWithAll(tt.skills)
			if err != nil {
				t.Fatalf("NodesWithAll() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NodesWithAll(%v) = %v, want %v", tt.skills, got, tt.want)
			}
		})
	}
}

func TestIndex_RebuildReplacesContents(t *testing.T) {
	idx := testIndex(t)

	if err := idx.Rebuild(&graph.Graph{}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	skills, err := idx.Skills()
	if err != nil {
		t.Fatalf("Skills() error = %v", err)
	}
	if len(skills) != 0 {
		t.Errorf("Skills() = %v, want empty after rebuild", skills)
	}

	ids, err := idx.NodesWithAny(nil)
	if err != nil {
		t.Fatalf("NodesWithAny() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("NodesWithAny(nil) = %v, want empty after rebuild", ids)
	}

	if err := idx.Rebuild(nil); err != nil {
		t.Errorf("Rebuild(nil) error = %v", err)
	}
}
