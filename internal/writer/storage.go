package writer

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// ToStorage collects the pass's records into the session storage under
// --key, where a later from-storage reader or another pipeline stage can
// pick them up.
type ToStorage struct {
	plugin.Base
	key string

	sess    *session.Session
	records []record.Record
}

// NewToStorage creates a to-storage writer.
func NewToStorage() Writer {
	return &ToStorage{
		Base: plugin.NewBase("to-storage",
			"Collects records into the session storage."),
	}
}

// DefineFlags declares the writer's options.
func (w *ToStorage) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&w.key, "key", "", "Storage key to store the records under.")
}

// ParseArgs configures the writer from command-line options.
func (w *ToStorage) ParseArgs(args []string) error {
	if err := plugin.Parse(w, args); err != nil {
		return err
	}
	if w.key == "" {
		return errhandling.NewConfigurationError("to-storage writer: --key required", nil)
	}
	return nil
}

// Init prepares the writer with the shared session.
func (w *ToStorage) Init(sess *session.Session) error {
	w.sess = sess
	w.records = nil
	return nil
}

// WriteRecord collects the record.
func (w *ToStorage) WriteRecord(rec record.Record) error {
	w.records = append(w.records, rec)
	return nil
}

// Finalize publishes the collected records to the storage.
func (w *ToStorage) Finalize() error {
	w.sess.Storage()[w.key] = w.records
	w.records = nil
	return nil
}

// Close releases resources; to-storage holds none.
func (w *ToStorage) Close() error { return nil }

var _ StreamWriter = (*ToStorage)(nil)
