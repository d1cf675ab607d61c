// Package filter defines the filter contract of the pipeline and all
// shipped filter plugins.
//
// # Overview
//
// Filters sit between the reader and the writer. Each filter receives one
// record and returns zero or more derived records: zero terminates that
// record's path (a drop, not an error), one is the common transform or
// pass-through case, many fan the record out. Filters compose strictly in
// declared order and must not assume their position in the chain.
//
// # Optional Capabilities
//
// Filters may additionally implement Flusher (buffered filters that emit
// held records at end of stream) and Resetter (stateful filters whose state
// is cleared at the start of each generator binding). The executor queries
// both by type assertion.
//
// # Nested Sub-Pipelines
//
// Meta-filters like trigger and tee route records through a nested chain of
// filters plus an optional writer. The nested chain is built through
// SubchainBuilder, which the factory package installs at init time to avoid
// an import cycle. Nesting depth is bounded by MaxNestingDepth.
package filter

import (
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// MaxNestingDepth bounds how deeply meta-filters may nest sub-pipelines.
const MaxNestingDepth = 50

// Filter transforms records as they travel from reader to writer.
type Filter interface {
	plugin.Plugin

	// Init prepares the filter with the shared session of the run.
	Init(sess *session.Session) error
	// Process handles one record and returns its derived records.
	// An empty result drops the record.
	Process(rec record.Record) ([]record.Record, error)
	// Close releases any resources held by the filter.
	Close() error
}

// Flusher is implemented by filters that buffer records and emit them at
// end of stream. The executor pushes flushed records through the remaining
// downstream filters.
type Flusher interface {
	Flush() ([]record.Record, error)
}

// Resetter is implemented by stateful filters. The executor resets them at
// the start of each generator binding.
type Resetter interface {
	Reset()
}

// Subchain drives records through a nested filter chain and optional
// writer on behalf of a meta-filter.
type Subchain interface {
	Process(rec record.Record) error
	Flush() error
	Close() error
	Reset()
}

// SubchainBuilder builds a nested sub-pipeline from filter command lines
// and an optional writer command line. The factory package installs the
// implementation at init time; depth carries the nesting level of the
// requesting filter so the builder can enforce MaxNestingDepth.
var SubchainBuilder func(sess *session.Session, filterSpecs []string, writerSpec string, depth int) (Subchain, error)

// NestingAware is implemented by meta-filters that host sub-pipelines.
// The factory tells each one its nesting depth before ParseArgs.
type NestingAware interface {
	SetNestingDepth(depth int)
}
