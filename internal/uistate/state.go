// Package uistate holds the interactive state of a timeline view: the selected
// node and the set of nodes that pass the current skill filter.
package uistate

import (
	"errors"
	"fmt"

	"github.com/matsen/flowline/internal/graph"
)

// Errors returned by state transitions.
var (
	ErrUnknownNode = errors.New("node not in graph")
	ErrHiddenNode  = errors.New("node is filtered out")
)

// State is passed explicitly to renderers; nothing here is global.
type State struct {
	SelectedNodeID *string
	VisibleNodeIDs map[string]struct{}

	graph *graph.Graph
}

// New returns a state for g with every node visible and nothing selected.
func New(g *graph.Graph) *State {
	s := &State{graph: g}
	s.ShowAll()
	return s
}

// ShowAll clears the filter.
func (s *State) ShowAll() {
	s.VisibleNodeIDs = make(map[string]struct{})
	if s.graph == nil {
		return
	}
	for _, n := range s.graph.Nodes {
		s.VisibleNodeIDs[n.ID] = struct{}{}
	}
}

// ApplyFilter makes exactly ids visible. Unknown ids are ignored.
// A selection that becomes hidden is cleared.
func (s *State) ApplyFilter(ids []string) {
	s.VisibleNodeIDs = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.graph.Node(id) != nil {
			s.VisibleNodeIDs[id] = struct{}{}
		}
	}
	if s.SelectedNodeID != nil && !s.IsVisible(*s.SelectedNodeID) {
		s.SelectedNodeID = nil
	}
}

// IsVisible reports whether id passes the current filter.
func (s *State) IsVisible(id string) bool {
	_, ok := s.VisibleNodeIDs[id]
	return ok
}

// Select marks id as the selected node. Selecting the already selected node
// toggles the selection off, matching a second click on the same bar.
func (s *State) Select(id string) error {
	if s.graph.Node(id) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !s.IsVisible(id) {
		return fmt.Errorf("%w: %s", ErrHiddenNode, id)
	}
	if s.SelectedNodeID != nil && *s.SelectedNodeID == id {
		s.SelectedNodeID = nil
		return nil
	}
	s.SelectedNodeID = &id
	return nil
}

// ClearSelection deselects any node.
func (s *State) ClearSelection() {
	s.SelectedNodeID = nil
}

// Selected returns the selected node, or nil.
func (s *State) Selected() *graph.Node {
	if s.SelectedNodeID == nil {
		return nil
	}
	return s.graph.Node(*s.SelectedNodeID)
}

// VisibleEdges returns the edges whose endpoints are both visible, in graph order.
func (s *State) VisibleEdges() []*graph.Edge {
	if s.graph == nil {
		return nil
	}
	var out []*graph.Edge
	for _, e := range s.graph.Edges {
		if s.IsVisible(e.Source.ID) && s.IsVisible(e.Target.ID) {
			out = append(out, e)
		}
	}
	return out
}
