// Package edge defines the connection records that link timeline projects.
package edge

import (
	"errors"
	"math"
)

// Connection is a directed, weighted link between two projects.
type Connection struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Value  float64 `json:"value" yaml:"value"`
}

// Validation errors.
var (
	ErrEmptySource   = errors.New("source is required")
	ErrEmptyTarget   = errors.New("target is required")
	ErrNegativeValue = errors.New("value must not be negative")
	ErrInvalidValue  = errors.New("value must be a finite number")
)

// Validate checks a connection in isolation, without resolving its endpoints.
func (c *Connection) Validate() error {
	if c.Source == "" {
		return ErrEmptySource
	}
	if c.Target == "" {
		return ErrEmptyTarget
	}
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return ErrInvalidValue
	}
	if c.Value < 0 {
		return ErrNegativeValue
	}
	return nil
}

// WidthDivisor scales connection strength down to a stroke width.
const WidthDivisor = 5.0

// MinWidth keeps every edge visible regardless of its value.
const MinWidth = 1.0

// Width returns the stroke width for a connection strength.
func Width(value float64) float64 {
	return math.Max(MinWidth, value/WidthDivisor)
}

// Orphan reasons.
const (
	ReasonMissingSource = "missing_source"
	ReasonMissingTarget = "missing_target"
	ReasonMissingBoth   = "missing_both"
)

// OrphanedConnectionInfo describes a connection with an unresolvable endpoint.
type OrphanedConnectionInfo struct {
	Index  int    `json:"index"` // position in the input list
	Source string `json:"source"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// DetectOrphanedConnections splits connections into those whose endpoints are
// both in validIDs and those that are not. Input order is preserved in both results.
func DetectOrphanedConnections(conns []Connection, validIDs map[string]bool) (orphaned []OrphanedConnectionInfo, valid []Connection) {
	for i, c := range conns {
		sourceOK := validIDs[c.Source]
		targetOK := validIDs[c.Target]

		if sourceOK && targetOK {
			valid = append(valid, c)
			continue
		}

		info := OrphanedConnectionInfo{Index: i, Source: c.Source, Target: c.Target}
		switch {
		case !sourceOK && !targetOK:
			info.Reason = ReasonMissingBoth
		case !sourceOK:
			info.Reason = ReasonMissingSource
		default:
			info.Reason = ReasonMissingTarget
		}
		orphaned = append(orphaned, info)
	}
	return orphaned, valid
}

// Key identifies a connection by its endpoints.
type Key struct {
	Source string
	Target string
}

// FindDuplicateConnections returns endpoint pairs that appear more than once.
func FindDuplicateConnections(conns []Connection) map[Key]int {
	counts := make(map[Key]int)
	for _, c := range conns {
		counts[Key{Source: c.Source, Target: c.Target}]++
	}

	duplicates := make(map[Key]int)
	for key, count := range counts {
		if count > 1 {
			duplicates[key] = count
		}
	}
	return duplicates
}
