// Package writer defines the writer contracts of the pipeline and all
// shipped writer plugins.
//
// # Contracts
//
// Writers declare their semantics by interface: a BatchWriter receives the
// whole record set of a pass at once, a StreamWriter receives records one
// by one and is finalized at end of pass. The executor selects the drive
// loop from the declared contract; pairing a batch-only writer with an
// unbounded reader is rejected at build time because the batch can never
// materialize.
//
// # Split Routing
//
// Splittable writers route records to named destination variants. The
// variant comes either from the label a split-records filter stored in
// metadata (--split-key) or from the writer's own splitter
// (--split-names/--split-ratios).
package writer

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/pathutil"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/split"
)

// Writer is the base contract shared by all writers.
type Writer interface {
	plugin.Plugin

	// Init prepares the writer with the shared session of the run.
	Init(sess *session.Session) error
	// Close releases any resources held by the writer.
	Close() error
}

// BatchWriter consumes the whole record set of a pass at once.
type BatchWriter interface {
	Writer
	WriteBatch(records []record.Record) error
}

// StreamWriter consumes records one by one. Finalize is called at end of
// pass; its failure is always fatal.
type StreamWriter interface {
	Writer
	WriteRecord(rec record.Record) error
	Finalize() error
}

// splitSpec holds the split routing options of splittable writers.
type splitSpec struct {
	splitKey  string
	names     []string
	ratiosRaw []string

	splitter *split.Splitter
}

// defineFlags declares the split routing options.
func (s *splitSpec) defineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.splitKey, "split-key", "split", "Metadata key holding the split label.")
	fs.StringSliceVar(&s.names, "split-names", nil, "Subset names for the writer's own splitter.")
	fs.StringSliceVar(&s.ratiosRaw, "split-ratios", nil, "Integer ratios, one per subset.")
}

// compile validates the options and builds the splitter when configured.
func (s *splitSpec) compile(writerName string) error {
	if len(s.names) == 0 && len(s.ratiosRaw) == 0 {
		return nil
	}
	ratios := make([]int, len(s.ratiosRaw))
	for i, raw := range s.ratiosRaw {
		ratio, err := strconv.Atoi(raw)
		if err != nil {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("%s writer: invalid ratio %q", writerName, raw), err)
		}
		ratios[i] = ratio
	}
	splitter, err := split.New(s.names, ratios)
	if err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("%s writer: invalid splits", writerName), err)
	}
	s.splitter = splitter
	return nil
}

// variantOf returns the destination variant of the record. The writer's
// own splitter wins over the metadata label; an empty string means the
// unsplit default destination.
func (s *splitSpec) variantOf(rec record.Record) string {
	if s.splitter != nil {
		return s.splitter.Next()
	}
	if label, ok := record.MetaValue(rec, s.splitKey); ok {
		if name, isString := label.(string); isString {
			return name
		}
	}
	return ""
}

// reset restarts the writer's own splitter for the next binding.
func (s *splitSpec) reset() {
	if s.splitter != nil {
		s.splitter.Reset()
	}
}

// variantPath derives the destination path of a variant by inserting the
// variant name before the extension.
func variantPath(path, variant string) string {
	if variant == "" {
		return path
	}
	stem, ext := pathutil.SplitExt(path)
	return stem + "-" + variant + ext
}

// render turns a record into its text form for line-oriented writers.
func render(rec record.Record) string {
	if s, ok := rec.(string); ok {
		return s
	}
	if name, ok := record.NameOf(rec); ok {
		return name
	}
	return record.Describe(rec)
}
