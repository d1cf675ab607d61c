// Package runtime provides the pipeline execution engine. The executor
// expands the generator into bindings, instantiates one pipeline per
// binding and drives records reader → filters → writer.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/factory"
	"github.com/waikato-datamining/kasperl/internal/filter"
	"github.com/waikato-datamining/kasperl/internal/generator"
	"github.com/waikato-datamining/kasperl/internal/logger"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/template"
	"github.com/waikato-datamining/kasperl/internal/writer"
	"github.com/waikato-datamining/kasperl/pkg/pipeline"
)

// Common errors.
var (
	// ErrNilDefinition is returned when the pipeline definition is nil.
	ErrNilDefinition = errors.New("pipeline definition is nil")

	// ErrNoReader is returned when the definition names no reader.
	ErrNoReader = errors.New("pipeline definition has no reader")
)

// Options configure a pipeline run.
type Options struct {
	// DryRun prints records instead of writing them.
	DryRun bool

	// AnnotationsOnly restricts capable readers and writers to records
	// carrying annotations.
	AnnotationsOnly bool

	// Placeholders are extra session placeholders, applied after the
	// definition's own (so command-line --set wins).
	Placeholders map[string]string

	// Out receives dry-run record dumps; defaults to stdout.
	Out io.Writer
}

// Executor runs a pipeline definition to completion. One executor handles
// one run; create a fresh one per run.
//
// The executor only interacts with plugins through their interfaces, so
// plugins can evolve independently of the engine.
type Executor struct {
	def  *pipeline.Definition
	opts Options
	out  io.Writer
}

// New creates an executor for the given definition.
func New(def *pipeline.Definition, opts Options) *Executor {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Executor{def: def, opts: opts, out: out}
}

// Execute runs the pipeline: one pass per generator binding, fail fast.
// The returned result always carries the per-binding counts accumulated so
// far, even when an error is also returned.
func (e *Executor) Execute(ctx context.Context) (*pipeline.ExecutionResult, error) {
	startedAt := time.Now()

	if e.def == nil {
		return e.errorResult(startedAt, "", ErrNilDefinition), ErrNilDefinition
	}
	if e.def.Reader == "" {
		return e.errorResult(startedAt, e.def.Name, ErrNoReader), ErrNoReader
	}

	sess := session.New()
	for name, value := range e.def.Placeholders {
		sess.SetPlaceholder(name, value)
	}
	for name, value := range e.opts.Placeholders {
		sess.SetPlaceholder(name, value)
	}
	sess.SetAnnotationsOnly(e.opts.AnnotationsOnly)

	result := &pipeline.ExecutionResult{
		RunID:        sess.ID(),
		PipelineName: e.def.Name,
		Status:       pipeline.StatusError,
		StartedAt:    startedAt,
	}

	bindings, err := e.expandBindings()
	if err != nil {
		return e.finish(result, err), err
	}

	runCtx := logger.RunContext{
		RunID:        sess.ID(),
		PipelineName: e.def.Name,
		Binding:      -1,
		FilterIndex:  -1,
		DryRun:       e.opts.DryRun,
	}
	logger.LogRunStart(runCtx)

	for i, binding := range bindings {
		br := e.runBinding(ctx, sess, i, binding)
		result.Bindings = append(result.Bindings, br)
		if br.Err != nil {
			e.finish(result, br.Err)
			logger.LogRunEnd(runCtx, pipeline.StatusError, result.RecordsWritten(), result.Duration())
			return result, br.Err
		}
	}

	e.finish(result, nil)
	logger.LogRunEnd(runCtx, pipeline.StatusSuccess, result.RecordsWritten(), result.Duration())
	logger.LogMetrics(runCtx, logger.RunMetrics{
		TotalDuration:    result.Duration(),
		RecordsRead:      result.RecordsRead(),
		RecordsWritten:   result.RecordsWritten(),
		RecordsDropped:   result.RecordsDropped(),
		RecordsPerSecond: perSecond(result.RecordsWritten(), result.Duration()),
	})
	return result, nil
}

// expandBindings materializes the generator's bindings, or a single empty
// binding when the definition has no generator.
func (e *Executor) expandBindings() ([]generator.Binding, error) {
	if e.def.Generator == "" {
		return []generator.Binding{nil}, nil
	}
	g, err := factory.BuildGenerator(e.def.Generator)
	if err != nil {
		return nil, err
	}
	return g.Generate()
}

// runBinding executes one full pipeline pass for a single binding. The
// pipeline is instantiated fresh, so filter state never leaks across
// bindings.
func (e *Executor) runBinding(ctx context.Context, sess *session.Session, index int, binding generator.Binding) pipeline.BindingResult {
	start := time.Now()
	br := pipeline.BindingResult{Binding: binding}

	bindCtx := logger.RunContext{
		RunID:        sess.ID(),
		PipelineName: e.def.Name,
		Binding:      index,
		Stage:        "pipeline",
		FilterIndex:  -1,
		DryRun:       e.opts.DryRun,
	}
	logger.LogStageStart(bindCtx)

	err := e.runPass(ctx, sess, binding, &br)
	br.Duration = time.Since(start)

	if err != nil {
		br.Err = errhandling.ClassifyError(err)
		logger.LogStageEnd(bindCtx, br.RecordsWritten, br.Duration, &logger.RunError{
			Category: string(errhandling.GetErrorCategory(err)),
			Message:  err.Error(),
		})
		return br
	}
	logger.LogStageEnd(bindCtx, br.RecordsWritten, br.Duration, nil)
	return br
}

// runPass builds, initializes, drives and tears down one pipeline instance.
func (e *Executor) runPass(ctx context.Context, sess *session.Session, binding generator.Binding, br *pipeline.BindingResult) error {
	p, err := factory.BuildPipeline(
		template.Substitute(e.def.Reader, binding),
		substituteAll(e.def.Filters, binding),
		template.Substitute(e.def.Writer, binding))
	if err != nil {
		return err
	}

	log := logger.WithRun(sess.ID())
	log.Debug("pipeline assembled",
		"reader", p.Reader.Name(),
		"filter_count", len(p.Filters),
		"has_writer", p.Writer != nil)

	if err := p.Reader.Init(sess); err != nil {
		return fmt.Errorf("initializing reader %q: %w", p.Reader.Name(), err)
	}
	defer closeQuietly(sess.ID(), "reader", p.Reader.Name(), p.Reader.Close)

	for _, f := range p.Filters {
		if err := f.Init(sess); err != nil {
			return fmt.Errorf("initializing filter %q: %w", f.Name(), err)
		}
		defer closeQuietly(sess.ID(), "filter", f.Name(), f.Close)
	}
	for _, f := range p.Filters {
		if r, ok := f.(filter.Resetter); ok {
			r.Reset()
		}
	}

	sink, err := e.newSink(sess, p.Writer)
	if err != nil {
		return err
	}
	defer sink.close(sess.ID())

	for !p.Reader.HasFinished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := p.Reader.Read(ctx)
		if err != nil {
			return fmt.Errorf("reader %q: %w", p.Reader.Name(), err)
		}
		br.RecordsRead += len(chunk)

		for _, rec := range chunk {
			out, err := runFilters(p.Filters, 0, []record.Record{rec})
			if err != nil {
				return err
			}
			if err := sink.deliver(out, br); err != nil {
				return err
			}
		}
	}

	// End of pass: drain buffering filters through everything downstream
	// of them, in chain order.
	for i, f := range p.Filters {
		flusher, ok := f.(filter.Flusher)
		if !ok {
			continue
		}
		recs, err := flusher.Flush()
		if err != nil {
			return fmt.Errorf("flushing filter %q: %w", f.Name(), err)
		}
		if len(recs) == 0 {
			continue
		}
		out, err := runFilters(p.Filters, i+1, recs)
		if err != nil {
			return err
		}
		if err := sink.deliver(out, br); err != nil {
			return err
		}
	}

	if err := sink.finish(); err != nil {
		return err
	}

	// Fan-out can push written past read; dropped only counts suppression.
	if d := br.RecordsRead - br.RecordsWritten; d > 0 {
		br.RecordsDropped = d
	}
	return nil
}

// runFilters fans records through the chain starting at the given index.
// An empty return means everything was dropped.
func runFilters(filters []filter.Filter, start int, recs []record.Record) ([]record.Record, error) {
	current := recs
	for i := start; i < len(filters); i++ {
		var next []record.Record
		for _, rec := range current {
			out, err := filters[i].Process(rec)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", filters[i].Name(), err)
			}
			next = append(next, out...)
		}
		current = next
		if len(current) == 0 {
			return nil, nil
		}
	}
	return current, nil
}

// substituteAll applies a binding to every spec in the list.
func substituteAll(specs []string, binding generator.Binding) []string {
	if len(specs) == 0 {
		return nil
	}
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = template.Substitute(s, binding)
	}
	return out
}

// sink is the executor's view of the pipeline tail: a stream writer, a
// batch writer, a dry-run printer, or nothing at all.
type sink struct {
	writer  writer.Writer
	stream  writer.StreamWriter
	batch   writer.BatchWriter
	dryRun  bool
	out     io.Writer
	pending []record.Record
}

// newSink wraps the pipeline's writer. In dry-run mode the writer is built
// for validation but never initialized or invoked.
func (e *Executor) newSink(sess *session.Session, w writer.Writer) (*sink, error) {
	s := &sink{writer: w, dryRun: e.opts.DryRun, out: e.out}
	if w == nil || e.opts.DryRun {
		return s, nil
	}
	if err := w.Init(sess); err != nil {
		return nil, fmt.Errorf("initializing writer %q: %w", w.Name(), err)
	}
	s.stream, _ = w.(writer.StreamWriter)
	s.batch, _ = w.(writer.BatchWriter)
	return s, nil
}

// deliver hands filtered records to the writer, counting them as written.
func (s *sink) deliver(recs []record.Record, br *pipeline.BindingResult) error {
	if s.writer == nil && !s.dryRun {
		return nil
	}
	for _, rec := range recs {
		if s.dryRun {
			fmt.Fprintln(s.out, record.Describe(rec))
			br.RecordsWritten++
			continue
		}
		if s.stream != nil {
			if err := s.stream.WriteRecord(rec); err != nil {
				return fmt.Errorf("writer %q: %w", s.writer.Name(), err)
			}
		} else if s.batch != nil {
			s.pending = append(s.pending, rec)
		}
		br.RecordsWritten++
	}
	return nil
}

// finish completes the pass: batch writers get the whole set, stream
// writers are finalized. A Finalize failure is always fatal.
func (s *sink) finish() error {
	if s.dryRun || s.writer == nil {
		return nil
	}
	if s.stream != nil {
		if err := s.stream.Finalize(); err != nil {
			return fmt.Errorf("finalizing writer %q: %w", s.writer.Name(), err)
		}
		return nil
	}
	if s.batch != nil {
		if err := s.batch.WriteBatch(s.pending); err != nil {
			return fmt.Errorf("writer %q: %w", s.writer.Name(), err)
		}
		s.pending = nil
	}
	return nil
}

// close releases the writer unless dry-run left it uninitialized.
func (s *sink) close(runID string) {
	if s.dryRun || s.writer == nil {
		return
	}
	closeQuietly(runID, "writer", s.writer.Name(), s.writer.Close)
}

// closeQuietly closes a plugin and logs any error instead of failing the
// run during teardown.
func closeQuietly(runID, kind, name string, close func() error) {
	if err := close(); err != nil {
		logger.WithPlugin(kind, name).Warn("failed to close plugin",
			"run_id", runID,
			"error", err.Error())
	}
}

// errorResult builds a minimal result for failures before a session exists.
func (e *Executor) errorResult(startedAt time.Time, name string, err error) *pipeline.ExecutionResult {
	result := &pipeline.ExecutionResult{
		PipelineName: name,
		Status:       pipeline.StatusError,
		StartedAt:    startedAt,
	}
	return e.finish(result, err)
}

// finish stamps completion time, status and the classified error.
func (e *Executor) finish(result *pipeline.ExecutionResult, err error) *pipeline.ExecutionResult {
	result.CompletedAt = time.Now()
	if err != nil {
		result.Status = pipeline.StatusError
		result.Err = errhandling.ClassifyError(err)
	} else {
		result.Status = pipeline.StatusSuccess
		result.Err = nil
	}
	return result
}

func perSecond(count int, d time.Duration) float64 {
	if count == 0 || d <= 0 {
		return 0
	}
	return float64(count) / d.Seconds()
}
