package filter

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/split"
)

// SplitRecords deterministically partitions the stream into named subsets
// by integer ratios and stores the assigned subset name in the record
// metadata.
type SplitRecords struct {
	plugin.Base
	names     []string
	ratiosRaw []string
	metaKey   string

	ratios   []int
	splitter *split.Splitter
}

// NewSplitRecords creates a split-records filter.
func NewSplitRecords() Filter {
	return &SplitRecords{
		Base: plugin.NewBase("split-records",
			"Partitions the stream into named subsets by ratios."),
		metaKey: "split",
	}
}

// DefineFlags declares the filter's options.
func (f *SplitRecords) DefineFlags(fs *pflag.FlagSet) {
	fs.StringSliceVar(&f.names, "split-names", nil, "Names of the subsets.")
	fs.StringSliceVar(&f.ratiosRaw, "split-ratios", nil, "Integer ratios, one per subset.")
	fs.StringVar(&f.metaKey, "metadata-key", f.metaKey, "Metadata key for the subset name.")
}

// ParseArgs configures the filter from command-line options.
func (f *SplitRecords) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	f.ratios = make([]int, len(f.ratiosRaw))
	for i, raw := range f.ratiosRaw {
		ratio, err := strconv.Atoi(raw)
		if err != nil {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("split-records filter: invalid ratio %q", raw), err)
		}
		f.ratios[i] = ratio
	}
	splitter, err := split.New(f.names, f.ratios)
	if err != nil {
		return errhandling.NewConfigurationError("split-records filter: invalid splits", err)
	}
	f.splitter = splitter
	return nil
}

// Init prepares the filter with the shared session.
func (f *SplitRecords) Init(sess *session.Session) error {
	f.splitter.Reset()
	return nil
}

// Process assigns the record to a subset and tags it with the name.
func (f *SplitRecords) Process(rec record.Record) ([]record.Record, error) {
	name := f.splitter.Next()
	record.SetMetaValue(rec, f.metaKey, name)
	return []record.Record{rec}, nil
}

// Reset restarts the ratio fill for the next binding.
func (f *SplitRecords) Reset() { f.splitter.Reset() }

// Close releases resources; split-records holds none.
func (f *SplitRecords) Close() error { return nil }

var (
	_ Filter   = (*SplitRecords)(nil)
	_ Resetter = (*SplitRecords)(nil)
)
