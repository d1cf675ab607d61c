package factory

import (
	"errors"
	"testing"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/filter"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

func TestBuildGenerator(t *testing.T) {
	g, err := BuildGenerator("list --value a --value b")
	if err != nil {
		t.Fatalf("BuildGenerator: %v", err)
	}
	if g.Name() != "list" {
		t.Errorf("name = %q, want %q", g.Name(), "list")
	}

	if _, err := BuildGenerator("no-such-generator"); !errors.Is(err, errhandling.ErrPluginNotFound) {
		t.Errorf("unknown generator: got %v, want plugin-not-found", err)
	}
	if _, err := BuildGenerator(""); !errors.Is(err, errhandling.ErrConfiguration) {
		t.Errorf("empty spec: got %v, want configuration error", err)
	}
}

func TestBuildReader(t *testing.T) {
	r, err := BuildReader("start --value hello")
	if err != nil {
		t.Fatalf("BuildReader: %v", err)
	}
	if r.Name() != "start" {
		t.Errorf("name = %q, want %q", r.Name(), "start")
	}

	if _, err := BuildReader("no-such-reader"); !errors.Is(err, errhandling.ErrPluginNotFound) {
		t.Errorf("unknown reader: got %v, want plugin-not-found", err)
	}
}

func TestBuildFilter(t *testing.T) {
	f, err := BuildFilter("max-records --max 2")
	if err != nil {
		t.Fatalf("BuildFilter: %v", err)
	}
	if f.Name() != "max-records" {
		t.Errorf("name = %q, want %q", f.Name(), "max-records")
	}

	if _, err := BuildFilter("no-such-filter"); !errors.Is(err, errhandling.ErrPluginNotFound) {
		t.Errorf("unknown filter: got %v, want plugin-not-found", err)
	}
	if _, err := BuildFilter("max-records --max 0"); !errors.Is(err, errhandling.ErrConfiguration) {
		t.Errorf("invalid option: got %v, want configuration error", err)
	}
	if _, err := BuildFilter("max-records --no-such-flag"); err == nil {
		t.Error("unknown flag accepted")
	}
}

func TestBuildWriter(t *testing.T) {
	w, err := BuildWriter("to-storage --key out")
	if err != nil {
		t.Fatalf("BuildWriter: %v", err)
	}
	if w.Name() != "to-storage" {
		t.Errorf("name = %q, want %q", w.Name(), "to-storage")
	}

	if _, err := BuildWriter("no-such-writer"); !errors.Is(err, errhandling.ErrPluginNotFound) {
		t.Errorf("unknown writer: got %v, want plugin-not-found", err)
	}
}

func TestBuildPipeline(t *testing.T) {
	p, err := BuildPipeline("start --value hi",
		[]string{"pass-through", "max-records --max 5"},
		"to-storage --key out")
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if len(p.Filters) != 2 {
		t.Errorf("filters = %d, want 2", len(p.Filters))
	}
	if p.Writer == nil {
		t.Error("writer not built")
	}

	p, err = BuildPipeline("start", nil, "")
	if err != nil {
		t.Fatalf("BuildPipeline without writer: %v", err)
	}
	if p.Writer != nil {
		t.Error("expected nil writer for empty spec")
	}

	if _, err := BuildPipeline("start", []string{"no-such-filter"}, ""); !errors.Is(err, errhandling.ErrPluginNotFound) {
		t.Errorf("bad filter spec: got %v, want plugin-not-found", err)
	}
}

func TestBuildPipelineRejectsBatchWriterOnUnboundedReader(t *testing.T) {
	dir := t.TempDir()

	_, err := BuildPipeline("poll-dir --dir "+dir+" --max-passes 0 --timeout 0",
		nil, "to-yaml-file --output out.yaml")
	if !errors.Is(err, errhandling.ErrConfiguration) {
		t.Fatalf("got %v, want configuration error", err)
	}

	// A bounded poll is fine with a batch writer.
	if _, err := BuildPipeline("poll-dir --dir "+dir+" --max-passes 1 --timeout 0",
		nil, "to-yaml-file --output out.yaml"); err != nil {
		t.Fatalf("bounded reader rejected: %v", err)
	}

	// Stream writers are fine regardless.
	if _, err := BuildPipeline("poll-dir --dir "+dir+" --max-passes 0 --timeout 0",
		nil, "console"); err != nil {
		t.Fatalf("stream writer rejected: %v", err)
	}
}

func TestSubchainBuilderInstalled(t *testing.T) {
	if filter.SubchainBuilder == nil {
		t.Fatal("SubchainBuilder not installed")
	}
}

func TestSubchainRoutesToWriter(t *testing.T) {
	sess := session.New()
	sc, err := buildSubchain(sess, []string{"max-records --max 1"}, "to-storage --key sub", 1)
	if err != nil {
		t.Fatalf("buildSubchain: %v", err)
	}

	for _, name := range []string{"a", "b", "c"} {
		if err := sc.Process(record.NewFileRecord("/data/" + name)); err != nil {
			t.Fatalf("Process(%s): %v", name, err)
		}
	}
	if err := sc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	stored, ok := sess.Storage()["sub"].([]record.Record)
	if !ok {
		t.Fatalf("storage key not populated: %#v", sess.Storage()["sub"])
	}
	if len(stored) != 1 {
		t.Errorf("stored %d records, want 1", len(stored))
	}

	if err := sc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestSubchainFlushDrainsBufferingFilters(t *testing.T) {
	sess := session.New()
	sc, err := buildSubchain(sess, []string{"record-window --size 10"}, "to-storage --key buf", 1)
	if err != nil {
		t.Fatalf("buildSubchain: %v", err)
	}

	if err := sc.Process("one"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := sc.Process("two"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	// Nothing fits in the window yet, so nothing reached the writer.
	if _, ok := sess.Storage()["buf"]; ok {
		t.Error("records written before flush")
	}

	if err := sc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	stored, _ := sess.Storage()["buf"].([]record.Record)
	if len(stored) != 2 {
		t.Errorf("stored %d records, want 2", len(stored))
	}
}

func TestSubchainNestingLimit(t *testing.T) {
	sess := session.New()
	if _, err := buildSubchain(sess, nil, "console", filter.MaxNestingDepth+1); !errors.Is(err, errhandling.ErrConfiguration) {
		t.Fatalf("got %v, want configuration error", err)
	}
}

func TestSubchainReset(t *testing.T) {
	sess := session.New()
	sc, err := buildSubchain(sess, []string{"max-records --max 1"}, "to-storage --key r", 1)
	if err != nil {
		t.Fatalf("buildSubchain: %v", err)
	}

	if err := sc.Process("a"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := sc.Process("b"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	sc.Reset()
	if err := sc.Process("c"); err != nil {
		t.Fatalf("Process after reset: %v", err)
	}
	if err := sc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	stored, _ := sess.Storage()["r"].([]record.Record)
	if len(stored) != 2 {
		t.Errorf("stored %d records, want 2 (one per pass)", len(stored))
	}
}

func TestSplitPipelineLine(t *testing.T) {
	t.Run("reader, filters and writer", func(t *testing.T) {
		readerSpec, filterSpecs, writerSpec, err := SplitPipelineLine(
			"from-text-file --input a.txt | max-records --max 5 | console")
		if err != nil {
			t.Fatalf("SplitPipelineLine: %v", err)
		}
		if readerSpec != "from-text-file --input a.txt" {
			t.Errorf("reader spec = %q", readerSpec)
		}
		if len(filterSpecs) != 1 || filterSpecs[0] != "max-records --max 5" {
			t.Errorf("filter specs = %#v", filterSpecs)
		}
		if writerSpec != "console" {
			t.Errorf("writer spec = %q", writerSpec)
		}
	})

	t.Run("last stage stays a filter when not a writer name", func(t *testing.T) {
		_, filterSpecs, writerSpec, err := SplitPipelineLine(
			"from-text-file --input a.txt | max-records --max 5 | pass-through")
		if err != nil {
			t.Fatalf("SplitPipelineLine: %v", err)
		}
		if len(filterSpecs) != 2 {
			t.Errorf("filter specs = %#v", filterSpecs)
		}
		if writerSpec != "" {
			t.Errorf("writer spec = %q, want empty", writerSpec)
		}
	})

	t.Run("single stage is reader only", func(t *testing.T) {
		readerSpec, filterSpecs, writerSpec, err := SplitPipelineLine("start --value hello")
		if err != nil {
			t.Fatalf("SplitPipelineLine: %v", err)
		}
		if readerSpec != "start --value hello" {
			t.Errorf("reader spec = %q", readerSpec)
		}
		if len(filterSpecs) != 0 || writerSpec != "" {
			t.Errorf("unexpected stages: filters %#v writer %q", filterSpecs, writerSpec)
		}
	})

	t.Run("quoting survives the split", func(t *testing.T) {
		_, _, writerSpec, err := SplitPipelineLine(
			`start --value hello | console --prefix "out: "`)
		if err != nil {
			t.Fatalf("SplitPipelineLine: %v", err)
		}
		w, err := BuildWriter(writerSpec)
		if err != nil {
			t.Fatalf("BuildWriter(%q): %v", writerSpec, err)
		}
		if w.Name() != "console" {
			t.Errorf("writer name = %q", w.Name())
		}
	})

	t.Run("malformed line rejected", func(t *testing.T) {
		if _, _, _, err := SplitPipelineLine("a | | b"); !errors.Is(err, errhandling.ErrConfiguration) {
			t.Errorf("error = %v, want configuration error", err)
		}
		if _, _, _, err := SplitPipelineLine(""); !errors.Is(err, errhandling.ErrConfiguration) {
			t.Errorf("error = %v, want configuration error", err)
		}
	})
}
