// Package graph normalizes timeline documents into an in-memory graph of
// project nodes and connection edges.
package graph

import (
	"time"

	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/project"
)

// Document is the raw timeline input: projects plus optional connections.
type Document struct {
	Projects    []project.Record  `json:"projects" yaml:"projects"`
	Connections []edge.Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// Node is one project in the graph. Geometry fields are filled in by the layout engine.
type Node struct {
	ID                string
	Name              string
	Start             time.Time
	End               time.Time // effective end; "now" for ongoing projects
	HasDefinedEndDate bool
	Duration          project.Duration
	Category          project.Category
	CategoryLabel     string // label as written in the document
	Phase             int
	Description       string
	Skills            []string
	Color             string
	Index             int // position in input order

	X0, X1 float64
	Y0, Y1 float64

	Outgoing []*Edge
	Incoming []*Edge
}

// Edge is a resolved connection. Source and Target point at nodes of the same graph.
type Edge struct {
	Source *Node
	Target *Node
	Value  float64
	Width  float64
	Index  int
}

// Diagnostic kinds.
const (
	DiagDroppedConnection = "dropped_connection"
	DiagInvalidValue      = "invalid_value"
	DiagEndBeforeStart    = "end_before_start"
)

// Diagnostic is a non-fatal problem found while normalizing a document.
type Diagnostic struct {
	Kind    string `json:"kind"`
	ID      string `json:"id,omitempty"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// Graph is the normalized node/edge graph for one load.
type Graph struct {
	Nodes []*Node
	Edges []*Edge

	// MinDate and MaxDate span every node's start and effective end.
	// Both are zero when the graph has no nodes.
	MinDate time.Time
	MaxDate time.Time

	Dropped     []edge.OrphanedConnectionInfo
	Diagnostics []Diagnostic

	byID map[string]*Node
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if g == nil || g.byID == nil {
		return nil
	}
	return g.byID[id]
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// OutgoingIDs returns the target ids of a node's outgoing edges in stored order.
func (n *Node) OutgoingIDs() []string {
	ids := make([]string, 0, len(n.Outgoing))
	for _, e := range n.Outgoing {
		ids = append(ids, e.Target.ID)
	}
	return ids
}

// IncomingIDs returns the source ids of a node's incoming edges in stored order.
func (n *Node) IncomingIDs() []string {
	ids := make([]string, 0, len(n.Incoming))
	for _, e := range n.Incoming {
		ids = append(ids, e.Source.ID)
	}
	return ids
}

// Width returns the node's horizontal extent.
func (n *Node) Width() float64 { return n.X1 - n.X0 }

// Height returns the node's vertical extent.
func (n *Node) Height() float64 { return n.Y1 - n.Y0 }
