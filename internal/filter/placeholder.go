package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// SetPlaceholder overwrites a session placeholder every time a record
// passes through. The value may itself contain placeholders, which are
// expanded per record.
type SetPlaceholder struct {
	plugin.Base
	placeholder string
	value       string

	sess *session.Session
}

// NewSetPlaceholder creates a set-placeholder filter.
func NewSetPlaceholder() Filter {
	return &SetPlaceholder{
		Base: plugin.NewBase("set-placeholder",
			"Overwrites a session placeholder per passing record."),
	}
}

// DefineFlags declares the filter's options.
func (f *SetPlaceholder) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.placeholder, "placeholder", "", "Placeholder name to set.")
	fs.StringVar(&f.value, "value", "", "Value to store; may contain placeholders.")
}

// ParseArgs configures the filter from command-line options.
func (f *SetPlaceholder) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.placeholder == "" {
		return errhandling.NewConfigurationError("set-placeholder filter: --placeholder required", nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *SetPlaceholder) Init(sess *session.Session) error {
	f.sess = sess
	return nil
}

// Process expands the value and stores it under the placeholder.
func (f *SetPlaceholder) Process(rec record.Record) ([]record.Record, error) {
	value, err := f.sess.Resolve(f.value)
	if err != nil {
		return nil, err
	}
	f.sess.SetPlaceholder(f.placeholder, value)
	return []record.Record{rec}, nil
}

// Close releases resources; set-placeholder holds none.
func (f *SetPlaceholder) Close() error { return nil }

var _ Filter = (*SetPlaceholder)(nil)
