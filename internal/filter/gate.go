package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Start suppresses records until its condition first matches. The matching
// record and everything after it pass through. The gate re-arms at the
// start of each generator binding.
type Start struct {
	plugin.Base
	match matchFlags

	open bool
}

// NewStart creates a start gate filter.
func NewStart() Filter {
	return &Start{
		Base: plugin.NewBase("start",
			"Suppresses records until the condition first matches."),
	}
}

// DefineFlags declares the filter's options.
func (f *Start) DefineFlags(fs *pflag.FlagSet) {
	f.match.defineNameFlag(fs)
	f.match.defineMetaFlags(fs)
}

// ParseArgs configures the filter from command-line options.
func (f *Start) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if !f.match.hasCondition() {
		return errhandling.NewConfigurationError(
			"start filter: --name-pattern or --field required", nil)
	}
	return f.match.compile(f.Name())
}

// Init prepares the filter with the shared session.
func (f *Start) Init(sess *session.Session) error {
	f.open = false
	return nil
}

// Process suppresses records until the gate opens.
func (f *Start) Process(rec record.Record) ([]record.Record, error) {
	if !f.open {
		matched, err := f.match.matches(rec)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, nil
		}
		f.open = true
	}
	return []record.Record{rec}, nil
}

// Reset re-arms the gate for the next binding.
func (f *Start) Reset() { f.open = false }

// Close releases resources; start holds none.
func (f *Start) Close() error { return nil }

var (
	_ Filter   = (*Start)(nil)
	_ Resetter = (*Start)(nil)
)

// Stop passes records until its condition first matches. The matching
// record and everything after it are suppressed. The gate re-arms at the
// start of each generator binding.
type Stop struct {
	plugin.Base
	match matchFlags

	closed bool
}

// NewStop creates a stop gate filter.
func NewStop() Filter {
	return &Stop{
		Base: plugin.NewBase("stop",
			"Suppresses records once the condition first matches."),
	}
}

// DefineFlags declares the filter's options.
func (f *Stop) DefineFlags(fs *pflag.FlagSet) {
	f.match.defineNameFlag(fs)
	f.match.defineMetaFlags(fs)
}

// ParseArgs configures the filter from command-line options.
func (f *Stop) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if !f.match.hasCondition() {
		return errhandling.NewConfigurationError(
			"stop filter: --name-pattern or --field required", nil)
	}
	return f.match.compile(f.Name())
}

// Init prepares the filter with the shared session.
func (f *Stop) Init(sess *session.Session) error {
	f.closed = false
	return nil
}

// Process forwards records until the gate closes.
func (f *Stop) Process(rec record.Record) ([]record.Record, error) {
	if f.closed {
		return nil, nil
	}
	matched, err := f.match.matches(rec)
	if err != nil {
		return nil, err
	}
	if matched {
		f.closed = true
		return nil, nil
	}
	return []record.Record{rec}, nil
}

// Reset re-arms the gate for the next binding.
func (f *Stop) Reset() { f.closed = false }

// Close releases resources; stop holds none.
func (f *Stop) Close() error { return nil }

var (
	_ Filter   = (*Stop)(nil)
	_ Resetter = (*Stop)(nil)
)
