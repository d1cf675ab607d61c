package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// PassThrough forwards every record unchanged. Useful as an explicit no-op
// placeholder in pipeline definitions.
type PassThrough struct {
	plugin.Base
}

// NewPassThrough creates a pass-through filter.
func NewPassThrough() Filter {
	return &PassThrough{
		Base: plugin.NewBase("pass-through", "Forwards every record unchanged."),
	}
}

// DefineFlags declares the filter's options; pass-through has none.
func (f *PassThrough) DefineFlags(fs *pflag.FlagSet) {}

// ParseArgs configures the filter from command-line options.
func (f *PassThrough) ParseArgs(args []string) error {
	return plugin.Parse(f, args)
}

// Init prepares the filter with the shared session.
func (f *PassThrough) Init(sess *session.Session) error { return nil }

// Process forwards the record unchanged.
func (f *PassThrough) Process(rec record.Record) ([]record.Record, error) {
	return []record.Record{rec}, nil
}

// Close releases resources; pass-through holds none.
func (f *PassThrough) Close() error { return nil }

var _ Filter = (*PassThrough)(nil)
