package factory

import (
	"fmt"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/filter"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/writer"
)

// subchain runs records through a nested filter chain and an optional
// writer on behalf of a meta-filter. Batch writers accumulate until Flush,
// stream writers receive records as they emerge from the chain.
type subchain struct {
	filters []filter.Filter
	writer  writer.Writer
	stream  writer.StreamWriter
	batch   writer.BatchWriter
	pending []record.Record
}

// buildSubchain is installed as filter.SubchainBuilder at init time.
func buildSubchain(sess *session.Session, filterSpecs []string, writerSpec string, depth int) (filter.Subchain, error) {
	if depth > filter.MaxNestingDepth {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("nesting depth %d exceeds maximum of %d", depth, filter.MaxNestingDepth), nil)
	}

	sc := &subchain{}
	for _, spec := range filterSpecs {
		f, err := buildFilterAtDepth(spec, depth)
		if err != nil {
			return nil, err
		}
		if err := f.Init(sess); err != nil {
			return nil, err
		}
		sc.filters = append(sc.filters, f)
	}

	if writerSpec != "" {
		w, err := BuildWriter(writerSpec)
		if err != nil {
			return nil, err
		}
		if err := w.Init(sess); err != nil {
			return nil, err
		}
		sc.writer = w
		sc.stream, _ = w.(writer.StreamWriter)
		sc.batch, _ = w.(writer.BatchWriter)
	}

	return sc, nil
}

// Process pushes one record through the nested chain.
func (sc *subchain) Process(rec record.Record) error {
	out, err := sc.runFilters(0, []record.Record{rec})
	if err != nil {
		return err
	}
	return sc.deliver(out)
}

// runFilters fans records through the chain starting at the given index.
func (sc *subchain) runFilters(start int, recs []record.Record) ([]record.Record, error) {
	current := recs
	for i := start; i < len(sc.filters); i++ {
		var next []record.Record
		for _, rec := range current {
			out, err := sc.filters[i].Process(rec)
			if err != nil {
				return nil, err
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

// deliver hands the chain's output to the writer, if any.
func (sc *subchain) deliver(recs []record.Record) error {
	if sc.writer == nil || len(recs) == 0 {
		return nil
	}
	if sc.stream != nil {
		for _, rec := range recs {
			if err := sc.stream.WriteRecord(rec); err != nil {
				return err
			}
		}
		return nil
	}
	sc.pending = append(sc.pending, recs...)
	return nil
}

// Flush drains buffering filters, in chain order, through everything
// downstream of them, then finalizes the writer.
func (sc *subchain) Flush() error {
	for i, f := range sc.filters {
		flusher, ok := f.(filter.Flusher)
		if !ok {
			continue
		}
		recs, err := flusher.Flush()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			continue
		}
		out, err := sc.runFilters(i+1, recs)
		if err != nil {
			return err
		}
		if err := sc.deliver(out); err != nil {
			return err
		}
	}

	if sc.batch != nil && sc.stream == nil {
		if err := sc.batch.WriteBatch(sc.pending); err != nil {
			return err
		}
		sc.pending = nil
	}
	if sc.stream != nil {
		if err := sc.stream.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

// Reset rearms stateful filters and the writer's split routing for a new
// pass.
func (sc *subchain) Reset() {
	for _, f := range sc.filters {
		if r, ok := f.(filter.Resetter); ok {
			r.Reset()
		}
	}
	sc.pending = nil
}

// Close releases the nested filters and writer.
func (sc *subchain) Close() error {
	var first error
	for _, f := range sc.filters {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	if sc.writer != nil {
		if err := sc.writer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
