package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// ListToSequence flattens slice records (as produced by readers with
// --as-list) into their individual elements. Non-slice records pass
// through unchanged.
type ListToSequence struct {
	plugin.Base
}

// NewListToSequence creates a list-to-sequence filter.
func NewListToSequence() Filter {
	return &ListToSequence{
		Base: plugin.NewBase("list-to-sequence",
			"Flattens slice records into individual records."),
	}
}

// DefineFlags declares the filter's options; list-to-sequence has none.
func (f *ListToSequence) DefineFlags(fs *pflag.FlagSet) {}

// ParseArgs configures the filter from command-line options.
func (f *ListToSequence) ParseArgs(args []string) error {
	return plugin.Parse(f, args)
}

// Init prepares the filter with the shared session.
func (f *ListToSequence) Init(sess *session.Session) error { return nil }

// Process fans a slice record out into its elements.
func (f *ListToSequence) Process(rec record.Record) ([]record.Record, error) {
	if list, ok := rec.([]record.Record); ok {
		return list, nil
	}
	return []record.Record{rec}, nil
}

// Close releases resources; list-to-sequence holds none.
func (f *ListToSequence) Close() error { return nil }

var _ Filter = (*ListToSequence)(nil)
