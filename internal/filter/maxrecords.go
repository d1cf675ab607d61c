package filter

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// MaxRecords passes at most --max records per pass and drops the
// remainder. The reader keeps running; only the chain output is capped.
type MaxRecords struct {
	plugin.Base
	max int

	passed int
}

// NewMaxRecords creates a max-records filter.
func NewMaxRecords() Filter {
	return &MaxRecords{
		Base: plugin.NewBase("max-records",
			"Caps the number of records passed per pass."),
		max: 100,
	}
}

// DefineFlags declares the filter's options.
func (f *MaxRecords) DefineFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.max, "max", f.max, "Maximum number of records to pass.")
}

// ParseArgs configures the filter from command-line options.
func (f *MaxRecords) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.max < 1 {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("max-records filter: --max must be at least 1, got %d", f.max), nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *MaxRecords) Init(sess *session.Session) error {
	f.passed = 0
	return nil
}

// Process passes the record while under the cap.
func (f *MaxRecords) Process(rec record.Record) ([]record.Record, error) {
	if f.passed >= f.max {
		return nil, nil
	}
	f.passed++
	return []record.Record{rec}, nil
}

// Reset restarts the count for the next binding.
func (f *MaxRecords) Reset() { f.passed = 0 }

// Close releases resources; max-records holds none.
func (f *MaxRecords) Close() error { return nil }

var (
	_ Filter   = (*MaxRecords)(nil)
	_ Resetter = (*MaxRecords)(nil)
)
