package edge

import (
	"math"
	"testing"
)

func TestConnection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conn    Connection
		wantErr error
	}{
		{
			name:    "valid connection",
			conn:    Connection{Source: "a", Target: "b", Value: 20},
			wantErr: nil,
		},
		{
			name:    "zero value",
			conn:    Connection{Source: "a", Target: "b", Value: 0},
			wantErr: nil,
		},
		{
			name:    "empty source",
			conn:    Connection{Source: "", Target: "b", Value: 1},
			wantErr: ErrEmptySource,
		},
		{
			name:    "empty target",
			conn:    Connection{Source: "a", Target: "", Value: 1},
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "negative value",
			conn:    Connection{Source: "a", Target: "b", Value: -3},
			wantErr: ErrNegativeValue,
		},
		{
			name:    "NaN value",
			conn:    Connection{Source: "a", Target: "b", Value: math.NaN()},
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{20, 4},
		{5, 1},
		{2, 1},
		{0, 1},
		{12.5, 2.5},
		{100, 20},
	}

	for _, tt := range tests {
		if got := Width(tt.value); got != tt.want {
			t.Errorf("Width(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDetectOrphanedConnections(t *testing.T) {
	validIDs := map[string]bool{"a": true, "b": true}

	conns := []Connection{
		{Source: "a", Target: "b", Value: 20},
		{Source: "a", Target: "c", Value: 5},
		{Source: "x", Target: "b", Value: 5},
		{Source: "x", Target: "y", Value: 5},
		{Source: "b", Target: "a", Value: 1},
	}

	orphaned, valid := DetectOrphanedConnections(conns, validIDs)

	if len(valid) != 2 {
		t.Fatalf("got %d valid connections, want 2", len(valid))
	}
	if valid[0].Source != "a" || valid[1].Source != "b" {
		t.Errorf("valid connections out of input order: %+v", valid)
	}

	wantReasons := []struct {
		index  int
		reason string
	}{
		{1, ReasonMissingTarget},
		{2, ReasonMissingSource},
		{3, ReasonMissingBoth},
	}
	if len(orphaned) != len(wantReasons) {
		t.Fatalf("got %d orphaned connections, want %d", len(orphaned), len(wantReasons))
	}
	for i, want := range wantReasons {
		if orphaned[i].Index != want.index {
			t.Errorf("orphan %d: index = %d, want %d", i, orphaned[i].Index, want.index)
		}
		if orphaned[i].Reason != want.reason {
			t.Errorf("orphan %d: reason = %q, want %q", i, orphaned[i].Reason, want.reason)
		}
	}
}

func TestDetectOrphanedConnections_Empty(t *testing.T) {
	orphaned, valid := DetectOrphanedConnections(nil, map[string]bool{})
	if len(orphaned) != 0 || len(valid) != 0 {
		t.Errorf("got %d orphaned and %d valid, want none", len(orphaned), len(valid))
	}
}

func TestFindDuplicateConnections(t *testing.T) {
	conns := []Connection{
		{Source: "a", Target: "b", Value: 1},
		{Source: "a", Target: "b", Value: 7},
		{Source: "b", Target: "a", Value: 1},
	}

	dups := FindDuplicateConnections(conns)
	if len(dups) != 1 {
		t.Fatalf("got %d duplicate keys, want 1", len(dups))
	}
	if dups[Key{Source: "a", Target: "b"}] != 2 {
		t.Errorf("duplicate count = %d, want 2", dups[Key{Source: "a", Target: "b"}])
	}
}
