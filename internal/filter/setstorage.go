package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// SetStorage stores passing records in the session storage under --key.
// With --append every record is collected into a slice; otherwise the last
// record wins. Records are forwarded unchanged.
type SetStorage struct {
	plugin.Base
	key    string
	append bool

	sess *session.Session
}

// NewSetStorage creates a set-storage filter.
func NewSetStorage() Filter {
	return &SetStorage{
		Base: plugin.NewBase("set-storage",
			"Stores passing records in the session storage."),
	}
}

// DefineFlags declares the filter's options.
func (f *SetStorage) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.key, "key", "", "Storage key to store the records under.")
	fs.BoolVar(&f.append, "append", false, "Collect all records into a slice instead of keeping the last.")
}

// ParseArgs configures the filter from command-line options.
func (f *SetStorage) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.key == "" {
		return errhandling.NewConfigurationError("set-storage filter: --key required", nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *SetStorage) Init(sess *session.Session) error {
	f.sess = sess
	return nil
}

// Process stores the record and forwards it unchanged.
func (f *SetStorage) Process(rec record.Record) ([]record.Record, error) {
	storage := f.sess.Storage()
	if f.append {
		existing, _ := storage[f.key].([]record.Record)
		storage[f.key] = append(existing, rec)
	} else {
		storage[f.key] = rec
	}
	return []record.Record{rec}, nil
}

// Close releases resources; set-storage holds none.
func (f *SetStorage) Close() error { return nil }

var _ Filter = (*SetStorage)(nil)
