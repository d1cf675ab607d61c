package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/pkg/pipeline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestExecuteSimplePipeline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, "alpha\nbeta\n")

	def := &pipeline.Definition{
		Name:   "simple",
		Reader: "from-text-file --input " + in,
		Writer: "to-text-file --output " + out,
	}
	result, err := New(def, Options{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Status != pipeline.StatusSuccess {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.RunID == "" {
		t.Error("run ID not set")
	}
	if got := result.RecordsRead(); got != 2 {
		t.Errorf("records read = %d, want 2", got)
	}
	if got := result.RecordsWritten(); got != 2 {
		t.Errorf("records written = %d, want 2", got)
	}
	if got := readFile(t, out); got != "alpha\nbeta\n" {
		t.Errorf("output = %q, want %q", got, "alpha\nbeta\n")
	}
}

func TestExecutePlaceholders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in.txt"), "one\n")

	def := &pipeline.Definition{
		Reader:       "from-text-file --input {WORK}/in.txt",
		Writer:       "to-text-file --output {WORK}/out.txt",
		Placeholders: map[string]string{"WORK": "/nonexistent"},
	}
	// Command-line placeholders override the definition's own.
	opts := Options{Placeholders: map[string]string{"WORK": dir}}
	if _, err := New(def, opts).Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "out.txt")); got != "one\n" {
		t.Errorf("output = %q, want %q", got, "one\n")
	}
}

func TestExecuteGeneratorBindings(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "rec\n")

	def := &pipeline.Definition{
		Name:      "fanout",
		Generator: "list --var n --value 1 --value 2 --value 3",
		Reader:    "from-text-file --input " + in,
		Writer:    "to-text-file --output " + filepath.Join(dir, "out_{n}.txt"),
	}
	result, err := New(def, Options{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(result.Bindings) != 3 {
		t.Fatalf("bindings = %d, want 3", len(result.Bindings))
	}
	for _, n := range []string{"1", "2", "3"} {
		path := filepath.Join(dir, "out_"+n+".txt")
		if got := readFile(t, path); got != "rec\n" {
			t.Errorf("out_%s.txt = %q, want %q", n, got, "rec\n")
		}
	}
	if result.Bindings[1].Binding["n"] != "2" {
		t.Errorf("second binding = %v, want n=2", result.Bindings[1].Binding)
	}
}

func TestExecuteFilterDropsRecords(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, "a\nb\nc\nd\n")

	def := &pipeline.Definition{
		Reader:  "from-text-file --input " + in,
		Filters: []string{"max-records --max 2"},
		Writer:  "to-text-file --output " + out,
	}
	result, err := New(def, Options{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := result.RecordsRead(); got != 4 {
		t.Errorf("read = %d, want 4", got)
	}
	if got := result.RecordsWritten(); got != 2 {
		t.Errorf("written = %d, want 2", got)
	}
	if got := result.RecordsDropped(); got != 2 {
		t.Errorf("dropped = %d, want 2", got)
	}
	if got := readFile(t, out); got != "a\nb\n" {
		t.Errorf("output = %q, want %q", got, "a\nb\n")
	}
}

func TestExecuteFlushesBufferingFilters(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, "a\nb\nc\n")

	def := &pipeline.Definition{
		Reader:  "from-text-file --input " + in,
		Filters: []string{"record-window --size 10"},
		Writer:  "to-text-file --output " + out,
	}
	result, err := New(def, Options{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := result.RecordsWritten(); got != 3 {
		t.Errorf("written = %d, want 3", got)
	}
	if got := result.RecordsDropped(); got != 0 {
		t.Errorf("dropped = %d, want 0", got)
	}
	if got := readFile(t, out); got != "a\nb\nc\n" {
		t.Errorf("output = %q, want %q", got, "a\nb\nc\n")
	}
}

func TestExecuteDryRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, "alpha\nbeta\n")

	var buf bytes.Buffer
	def := &pipeline.Definition{
		Reader: "from-text-file --input " + in,
		Writer: "to-text-file --output " + out,
	}
	result, err := New(def, Options{DryRun: true, Out: &buf}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := result.RecordsWritten(); got != 2 {
		t.Errorf("written = %d, want 2", got)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("dry run created the output file")
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "alpha") {
		t.Errorf("first line = %q, want it to mention alpha", lines[0])
	}
}

func TestExecuteUnknownPlugin(t *testing.T) {
	def := &pipeline.Definition{Reader: "no-such-reader"}
	result, err := New(def, Options{}).Execute(context.Background())
	if !errors.Is(err, errhandling.ErrPluginNotFound) {
		t.Fatalf("got %v, want plugin-not-found", err)
	}
	if result.Status != pipeline.StatusError {
		t.Errorf("status = %q, want error", result.Status)
	}
	if len(result.Bindings) != 1 || result.Bindings[0].Err == nil {
		t.Errorf("binding error not recorded: %+v", result.Bindings)
	}
}

func TestExecuteFailsFastAcrossBindings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in_1.txt"), "one\n")
	// in_2.txt deliberately missing; binding 3 must never run.

	def := &pipeline.Definition{
		Generator: "list --var n --value 1 --value 2 --value 3",
		Reader:    "from-text-file --input " + filepath.Join(dir, "in_{n}.txt"),
		Writer:    "to-text-file --output " + filepath.Join(dir, "out_{n}.txt"),
	}
	result, err := New(def, Options{}).Execute(context.Background())
	if !errors.Is(err, errhandling.ErrIO) {
		t.Fatalf("got %v, want io error", err)
	}

	if len(result.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2 (fail fast)", len(result.Bindings))
	}
	if result.Bindings[0].Err != nil {
		t.Errorf("first binding failed: %v", result.Bindings[0].Err)
	}
	if result.Bindings[1].Err == nil {
		t.Error("second binding error not recorded")
	}
	if _, err := os.Stat(filepath.Join(dir, "out_3.txt")); !os.IsNotExist(err) {
		t.Error("third binding ran after failure")
	}
}

func TestExecuteValidation(t *testing.T) {
	if _, err := New(nil, Options{}).Execute(context.Background()); !errors.Is(err, ErrNilDefinition) {
		t.Errorf("nil definition: got %v", err)
	}
	if _, err := New(&pipeline.Definition{}, Options{}).Execute(context.Background()); !errors.Is(err, ErrNoReader) {
		t.Errorf("missing reader: got %v", err)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	def := &pipeline.Definition{Reader: "from-text-file --input " + in}
	if _, err := New(def, Options{}).Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestExecuteWithoutWriter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "a\nb\n")

	def := &pipeline.Definition{Reader: "from-text-file --input " + in}
	result, err := New(def, Options{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.RecordsRead(); got != 2 {
		t.Errorf("read = %d, want 2", got)
	}
}
