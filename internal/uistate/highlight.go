package uistate

import (
	"fmt"

	"github.com/matsen/flowline/internal/graph"
)

// Phase is a state of the highlight sequence:
// idle -> highlighting node -> animating edges -> highlighting next node -> ... -> idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseHighlightNode
	PhaseAnimateEdges
)

func (p Phase) String() string {
	switch p {
	case PhaseHighlightNode:
		return "highlight_node"
	case PhaseAnimateEdges:
		return "animate_edges"
	default:
		return "idle"
	}
}

// MarshalText lets phases appear by name in JSON output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Step is one entry of a highlight plan.
type Step struct {
	Phase  Phase  `json:"phase"`
	NodeID string `json:"node_id,omitempty"` // node highlighted, or source of the animated edges
	Edges  []int  `json:"edges,omitempty"`   // indexes into Graph.Edges
	Depth  int    `json:"depth"`
}

// DefaultMaxDepth bounds propagation when the caller passes a non-positive depth.
const DefaultMaxDepth = 8

// PlanHighlight computes the highlight sequence that starts at startID and flows
// along outgoing edges, breadth first. Each node is highlighted at most once, so
// cycles terminate; nodes beyond maxDepth hops are not reached. Hidden nodes and
// the edges leading to them are skipped. The plan always ends with PhaseIdle.
func (s *State) PlanHighlight(startID string, maxDepth int) ([]Step, error) {
	start := s.graph.Node(startID)
	if start == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, startID)
	}
	if !s.IsVisible(startID) {
		return nil, fmt.Errorf("%w: %s", ErrHiddenNode, startID)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	type item struct {
		node  *graph.Node
		depth int
	}

	visited := map[string]bool{start.ID: true}
	queue := []item{{start, 0}}
	var steps []Step

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps = append(steps, Step{Phase: PhaseHighlightNode, NodeID: cur.node.ID, Depth: cur.depth})
		if cur.depth >= maxDepth {
			continue
		}

		var edges []int
		for _, e := range cur.node.Outgoing {
			if !s.IsVisible(e.Target.ID) {
				continue
			}
			edges = append(edges, e.Index)
			if !visited[e.Target.ID] {
				visited[e.Target.ID] = true
				queue = append(queue, item{e.Target, cur.depth + 1})
			}
		}
		if len(edges) > 0 {
			steps = append(steps, Step{Phase: PhaseAnimateEdges, NodeID: cur.node.ID, Edges: edges, Depth: cur.depth})
		}
	}

	steps = append(steps, Step{Phase: PhaseIdle})
	return steps, nil
}
