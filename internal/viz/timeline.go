package viz

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/layout"
	"github.com/matsen/flowline/internal/project"
)

// MaxAxisTicks bounds the number of month labels on the time axis.
const MaxAxisTicks = 12

// AxisLabelLayout formats tick labels.
const AxisLabelLayout = "Jan 2006"

// FromLayout converts a layout result into render data. Node and edge order
// follow the graph, and adjacency lists keep their stored order.
func FromLayout(res layout.Result) *TimelineData {
	vp := res.Viewport
	data := &TimelineData{
		Width:   vp.Width,
		Height:  vp.Height,
		OffsetX: vp.Margin.Left,
		OffsetY: vp.Margin.Top,
		Nodes:   []Node{},
		Edges:   []Edge{},
		Axis:    []Tick{},
	}

	g := res.Graph
	if g == nil {
		return data
	}

	// Tall stacks hit the unit-height floor and overflow the viewport.
	if needed := vp.Margin.Top + res.Offset + res.TotalHeight + vp.Margin.Bottom; needed > data.Height {
		data.Height = math.Ceil(needed)
	}

	if !g.IsEmpty() {
		data.MinDate = project.FormatDate(g.MinDate)
		data.MaxDate = project.FormatDate(g.MaxDate)
	}

	for _, n := range g.Nodes {
		data.Nodes = append(data.Nodes, newNode(n))
	}

	for i, e := range g.Edges {
		var path string
		if i < len(res.Curves) && !vp.Degenerate() {
			path = res.Curves[i].Path()
		}
		data.Edges = append(data.Edges, Edge{
			ID:     edgeID(e.Source.ID, e.Target.ID, i),
			Source: e.Source.ID,
			Target: e.Target.ID,
			Value:  e.Value,
			Width:  e.Width,
			Path:   path,
			Color:  e.Source.Color,
		})
	}

	if !g.IsEmpty() && !vp.Degenerate() {
		for _, t := range res.Scale.Ticks(MaxAxisTicks) {
			data.Axis = append(data.Axis, Tick{
				X:     res.Scale.Scale(t),
				Date:  project.FormatDate(t),
				Label: t.Format(AxisLabelLayout),
			})
		}
	}

	for _, d := range g.Dropped {
		data.Dropped = append(data.Dropped, Dropped{Source: d.Source, Target: d.Target, Reason: d.Reason})
	}

	return data
}

func newNode(n *graph.Node) Node {
	x0, x1, y0, y1 := layout.VisualBounds(n)

	skills := n.Skills
	if skills == nil {
		skills = []string{}
	}

	return Node{
		ID:          n.ID,
		Name:        n.Name,
		Start:       project.FormatDate(n.Start),
		End:         project.FormatDate(n.End),
		Ongoing:     !n.HasDefinedEndDate,
		Duration:    n.Duration.Display(),
		Category:    n.CategoryLabel,
		Phase:       n.Phase,
		Description: n.Description,
		Skills:      skills,
		Color:       n.Color,
		X0:          n.X0,
		X1:          n.X1,
		Y0:          n.Y0,
		Y1:          n.Y1,
		Rect:        Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0},
		Incoming:    n.IncomingIDs(),
		Outgoing:    n.OutgoingIDs(),
	}
}

// ToJSON serializes a layout result.
func ToJSON(res layout.Result) ([]byte, error) {
	data, err := json.Marshal(FromLayout(res))
	if err != nil {
		return nil, fmt.Errorf("marshaling timeline to JSON: %w", err)
	}
	return data, nil
}

// edgeID generates an edge ID for the current render.
// IDs are based on slice position and are not stable across different loads.
func edgeID(source, target string, index int) string {
	return fmt.Sprintf("%s-%s-%d", source, target, index)
}
