// Package split assigns items to named subsets by integer ratios.
// Assignment is deterministic proportional fill: each item goes to the
// subset that is currently furthest below its target share. No randomness,
// so 70/30 over 100 items yields exactly 70 and 30.
package split

import (
	"errors"
	"fmt"
)

// Common configuration errors.
var (
	// ErrNoSplits is returned when no subsets are configured.
	ErrNoSplits = errors.New("no split names configured")
	// ErrMismatchedRatios is returned when names and ratios differ in length.
	ErrMismatchedRatios = errors.New("split names and ratios differ in length")
	// ErrInvalidRatio is returned for ratios below 1.
	ErrInvalidRatio = errors.New("split ratios must be >= 1")
)

// Splitter deterministically assigns a stream of items to named subsets.
type Splitter struct {
	names  []string
	ratios []int
	counts []int
}

// New creates a splitter for the given subset names and integer ratios.
func New(names []string, ratios []int) (*Splitter, error) {
	if len(names) == 0 {
		return nil, ErrNoSplits
	}
	if len(names) != len(ratios) {
		return nil, fmt.Errorf("%w: %d names, %d ratios", ErrMismatchedRatios, len(names), len(ratios))
	}
	for _, r := range ratios {
		if r < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidRatio, r)
		}
	}
	return &Splitter{
		names:  names,
		ratios: ratios,
		counts: make([]int, len(names)),
	}, nil
}

// Next assigns the next item and returns its subset name.
// The subset with the lowest fill relative to its ratio wins; ties go to
// the earliest subset.
func (s *Splitter) Next() string {
	best := 0
	bestFill := float64(s.counts[0]) / float64(s.ratios[0])
	for i := 1; i < len(s.names); i++ {
		fill := float64(s.counts[i]) / float64(s.ratios[i])
		if fill < bestFill {
			best = i
			bestFill = fill
		}
	}
	s.counts[best]++
	return s.names[best]
}

// Counts returns the number of items assigned per subset, keyed by name.
func (s *Splitter) Counts() map[string]int {
	counts := make(map[string]int, len(s.names))
	for i, name := range s.names {
		counts[name] = s.counts[i]
	}
	return counts
}

// Reset clears the assignment counters.
func (s *Splitter) Reset() {
	for i := range s.counts {
		s.counts[i] = 0
	}
}
