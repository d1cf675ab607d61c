// Package split assigns items to named subsets by integer ratios.
package split

import (
	"errors"
	"testing"
)

// TestNew tests splitter construction and validation.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		ratios  []int
		wantErr error
	}{
		{"valid", []string{"train", "test"}, []int{70, 30}, nil},
		{"single subset", []string{"all"}, []int{1}, nil},
		{"no names", nil, nil, ErrNoSplits},
		{"length mismatch", []string{"a", "b"}, []int{1}, ErrMismatchedRatios},
		{"zero ratio", []string{"a", "b"}, []int{1, 0}, ErrInvalidRatio},
		{"negative ratio", []string{"a"}, []int{-2}, ErrInvalidRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.names, tt.ratios)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNextProportions tests exact proportional fill.
func TestNextProportions(t *testing.T) {
	s, err := New([]string{"train", "test"}, []int{70, 30})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 100; i++ {
		s.Next()
	}

	counts := s.Counts()
	if counts["train"] != 70 || counts["test"] != 30 {
		t.Errorf("Counts() = %v, want train=70 test=30", counts)
	}
}

// TestNextDeterministic tests that two identical splitters agree.
func TestNextDeterministic(t *testing.T) {
	a, _ := New([]string{"x", "y", "z"}, []int{3, 2, 1})
	b, _ := New([]string{"x", "y", "z"}, []int{3, 2, 1})

	for i := 0; i < 60; i++ {
		if got, want := a.Next(), b.Next(); got != want {
			t.Fatalf("assignment %d diverged: %q vs %q", i, got, want)
		}
	}

	counts := a.Counts()
	if counts["x"] != 30 || counts["y"] != 20 || counts["z"] != 10 {
		t.Errorf("Counts() = %v, want x=30 y=20 z=10", counts)
	}
}

// TestNextTieBreaksFirst tests that ties go to the earliest subset.
func TestNextTieBreaksFirst(t *testing.T) {
	s, _ := New([]string{"a", "b"}, []int{1, 1})
	if got := s.Next(); got != "a" {
		t.Errorf("first assignment = %q, want a", got)
	}
	if got := s.Next(); got != "b" {
		t.Errorf("second assignment = %q, want b", got)
	}
	if got := s.Next(); got != "a" {
		t.Errorf("third assignment = %q, want a", got)
	}
}

// TestReset tests counter clearing.
func TestReset(t *testing.T) {
	s, _ := New([]string{"a", "b"}, []int{1, 1})
	s.Next()
	s.Next()
	s.Reset()

	counts := s.Counts()
	if counts["a"] != 0 || counts["b"] != 0 {
		t.Errorf("Counts() after Reset = %v, want zeros", counts)
	}
	if got := s.Next(); got != "a" {
		t.Errorf("first assignment after Reset = %q, want a", got)
	}
}
