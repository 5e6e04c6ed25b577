package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/project"
)

// Palette is the categorical color cycle assigned to nodes in input order.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ColorFor returns the palette color for the node at the given input index.
func ColorFor(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// ErrInvalidDocument wraps every record-level error that aborts normalization.
var ErrInvalidDocument = errors.New("invalid timeline document")

// Options configures normalization.
type Options struct {
	// Now is the effective end date of ongoing projects. Zero means time.Now().
	Now time.Time
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Normalize builds a Graph from a document.
//
// Record-level problems (missing id or name, unparsable dates, duplicate ids)
// abort the whole load and no graph is returned. Connection-level problems
// (unknown endpoints, invalid values) are logged, recorded as diagnostics, and
// the offending connection is skipped or repaired.
func Normalize(doc *Document, opts Options) (*Graph, error) {
	if doc == nil {
		doc = &Document{}
	}
	log := opts.logger()
	now := opts.now()

	g := &Graph{
		Nodes: make([]*Node, 0, len(doc.Projects)),
		Edges: make([]*Edge, 0, len(doc.Connections)),
		byID:  make(map[string]*Node, len(doc.Projects)),
	}

	for i := range doc.Projects {
		rec := &doc.Projects[i]
		node, diags, err := buildNode(rec, i, now)
		if err != nil {
			return nil, fmt.Errorf("%w: project %d (%q): %w", ErrInvalidDocument, i, rec.ID, err)
		}
		if _, exists := g.byID[node.ID]; exists {
			return nil, fmt.Errorf("%w: project %d (%q): %w", ErrInvalidDocument, i, rec.ID, project.ErrDuplicateID)
		}
		for _, d := range diags {
			log.Warn("normalized project", "id", d.ID, "kind", d.Kind, "detail", d.Message)
		}
		g.Diagnostics = append(g.Diagnostics, diags...)
		g.Nodes = append(g.Nodes, node)
		g.byID[node.ID] = node
	}

	g.MinDate, g.MaxDate = dateSpan(g.Nodes)

	validIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		validIDs[n.ID] = true
	}

	orphaned, valid := edge.DetectOrphanedConnections(doc.Connections, validIDs)
	for _, o := range orphaned {
		log.Warn("dropping connection", "source", o.Source, "target", o.Target, "reason", o.Reason)
		g.Diagnostics = append(g.Diagnostics, Diagnostic{
			Kind:    DiagDroppedConnection,
			Source:  o.Source,
			Target:  o.Target,
			Message: o.Reason,
		})
	}
	g.Dropped = orphaned

	for _, c := range valid {
		value := c.Value
		if err := c.Validate(); err != nil {
			log.Warn("clamping connection value", "source", c.Source, "target", c.Target, "value", c.Value, "error", err)
			g.Diagnostics = append(g.Diagnostics, Diagnostic{
				Kind:    DiagInvalidValue,
				Source:  c.Source,
				Target:  c.Target,
				Message: err.Error(),
			})
			value = 0
		}

		src := g.byID[c.Source]
		tgt := g.byID[c.Target]
		e := &Edge{
			Source: src,
			Target: tgt,
			Value:  value,
			Width:  edge.Width(value),
			Index:  len(g.Edges),
		}
		g.Edges = append(g.Edges, e)
		src.Outgoing = append(src.Outgoing, e)
		tgt.Incoming = append(tgt.Incoming, e)
	}

	return g, nil
}

// buildNode converts one record into a node, applying the strict date policy.
func buildNode(rec *project.Record, index int, now time.Time) (*Node, []Diagnostic, error) {
	if err := rec.Validate(); err != nil {
		return nil, nil, err
	}

	start, err := project.ParseDate(rec.StartDate)
	if err != nil {
		return nil, nil, fmt.Errorf("startDate: %w", err)
	}

	var diags []Diagnostic
	end := now
	hasEnd := rec.HasEndDate()
	if hasEnd {
		end, err = project.ParseDate(rec.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("endDate: %w", err)
		}
	}
	if end.Before(start) {
		diags = append(diags, Diagnostic{
			Kind:    DiagEndBeforeStart,
			ID:      rec.ID,
			Message: fmt.Sprintf("end %s precedes start %s; using start", project.FormatDate(end), project.FormatDate(start)),
		})
		end = start
	}

	return &Node{
		ID:                rec.ID,
		Name:              rec.Name,
		Start:             start,
		End:               end,
		HasDefinedEndDate: hasEnd,
		Duration:          rec.Duration,
		Category:          project.ParseCategory(rec.Category),
		CategoryLabel:     rec.Category,
		Phase:             rec.Phase,
		Description:       rec.Description,
		Skills:            normalizeSkills(rec.Skills),
		Color:             ColorFor(index),
		Index:             index,
	}, diags, nil
}

// normalizeSkills trims entries, drops blanks and repeats, and never returns nil.
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// dateSpan returns the earliest start and latest effective end across nodes.
func dateSpan(nodes []*Node) (time.Time, time.Time) {
	if len(nodes) == 0 {
		return time.Time{}, time.Time{}
	}
	minDate, maxDate := nodes[0].Start, nodes[0].End
	for _, n := range nodes[1:] {
		if n.Start.Before(minDate) {
			minDate = n.Start
		}
		if n.End.After(maxDate) {
			maxDate = n.End
		}
	}
	return minDate, maxDate
}

// TotalMultiplier sums the category multipliers of every node.
func (g *Graph) TotalMultiplier() float64 {
	var sum float64
	for _, n := range g.Nodes {
		sum += n.Category.Multiplier()
	}
	return sum
}
