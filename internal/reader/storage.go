package reader

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// FromStorage forwards records previously placed in session storage, e.g.
// by the set-storage filter of an earlier binding.
type FromStorage struct {
	plugin.Base
	key string

	sess     *session.Session
	finished bool
}

// NewFromStorage creates an unconfigured from-storage reader.
func NewFromStorage() Reader {
	return &FromStorage{
		Base: plugin.NewBase("from-storage",
			"Forwards records stored in the session under a key."),
	}
}

// DefineFlags declares the reader's options.
func (r *FromStorage) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&r.key, "key", "", "Storage key to read from.")
}

// ParseArgs configures the reader from command-line options.
func (r *FromStorage) ParseArgs(args []string) error {
	if err := plugin.Parse(r, args); err != nil {
		return err
	}
	if r.key == "" {
		return errhandling.NewConfigurationError("from-storage reader: --key required", nil)
	}
	return nil
}

// Init prepares the reader with the shared session.
func (r *FromStorage) Init(sess *session.Session) error {
	r.sess = sess
	r.finished = false
	return nil
}

// Read forwards the stored value. A stored record slice is forwarded as
// individual records, anything else as a single record.
func (r *FromStorage) Read(ctx context.Context) ([]record.Record, error) {
	if r.finished {
		return nil, nil
	}
	r.finished = true

	value, ok := r.sess.Storage()[r.key]
	if !ok {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("from-storage reader: no value stored under %q", r.key), nil)
	}

	if records, ok := value.([]record.Record); ok {
		return records, nil
	}
	return []record.Record{value}, nil
}

// HasFinished reports whether the stored value has been forwarded.
func (r *FromStorage) HasFinished() bool { return r.finished }

// Close releases resources; from-storage holds none.
func (r *FromStorage) Close() error { return nil }

var _ Reader = (*FromStorage)(nil)
