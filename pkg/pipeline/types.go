// Package pipeline provides the public types describing pipeline definitions
// and execution results. It is intended to be importable by external projects
// that embed the kasperl engine.
package pipeline

import "time"

// Execution status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Definition is a declarative pipeline: plugin command lines for each stage
// plus placeholders seeded into the session. Generator, filters and writer
// are optional; the reader is required.
type Definition struct {
	// Name is the human-readable name of the pipeline.
	Name string `yaml:"name" json:"name"`

	// Description provides additional context about the pipeline.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Generator is the variable generator command line; empty for a single run.
	Generator string `yaml:"generator,omitempty" json:"generator,omitempty"`

	// Reader is the record source command line.
	Reader string `yaml:"reader" json:"reader"`

	// Filters is the ordered list of filter command lines.
	Filters []string `yaml:"filters,omitempty" json:"filters,omitempty"`

	// Writer is the record sink command line; empty to discard records.
	Writer string `yaml:"writer,omitempty" json:"writer,omitempty"`

	// Placeholders are seeded into the session before execution.
	Placeholders map[string]string `yaml:"placeholders,omitempty" json:"placeholders,omitempty"`
}

// BindingResult holds the outcome of one generator binding's pipeline pass.
type BindingResult struct {
	// Binding maps variable names to the values of this pass.
	Binding map[string]string `json:"binding,omitempty"`

	// RecordsRead is the number of records the reader produced.
	RecordsRead int `json:"recordsRead"`

	// RecordsWritten is the number of records that reached the writer.
	RecordsWritten int `json:"recordsWritten"`

	// RecordsDropped is the number of records suppressed by the filter chain.
	RecordsDropped int `json:"recordsDropped"`

	// Duration is how long the pass took.
	Duration time.Duration `json:"duration"`

	// Err is the classified error that aborted the pass, if any.
	Err error `json:"-"`
}

// ExecutionResult holds the outcome of a whole pipeline run across all
// generator bindings.
type ExecutionResult struct {
	// RunID is the session's unique run identifier.
	RunID string `json:"runId"`

	// PipelineName echoes the definition's name.
	PipelineName string `json:"pipelineName,omitempty"`

	// Status is "success" or "error".
	Status string `json:"status"`

	// StartedAt is when execution began.
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution finished.
	CompletedAt time.Time `json:"completedAt"`

	// Bindings holds the per-binding outcomes, in execution order. Execution
	// fails fast, so a failed binding is always the last entry.
	Bindings []BindingResult `json:"bindings"`

	// Err is the classified error that stopped the run, if any.
	Err error `json:"-"`
}

// RecordsRead sums the records read across all bindings.
func (r *ExecutionResult) RecordsRead() int {
	total := 0
	for _, b := range r.Bindings {
		total += b.RecordsRead
	}
	return total
}

// RecordsWritten sums the records written across all bindings.
func (r *ExecutionResult) RecordsWritten() int {
	total := 0
	for _, b := range r.Bindings {
		total += b.RecordsWritten
	}
	return total
}

// RecordsDropped sums the records dropped across all bindings.
func (r *ExecutionResult) RecordsDropped() int {
	total := 0
	for _, b := range r.Bindings {
		total += b.RecordsDropped
	}
	return total
}

// Duration is the wall-clock time of the whole run.
func (r *ExecutionResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
