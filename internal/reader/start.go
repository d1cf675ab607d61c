package reader

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Start emits a single string record to kick off trigger-style pipelines
// whose real work happens in meta-filters.
type Start struct {
	plugin.Base
	value string

	finished bool
}

// NewStart creates an unconfigured start reader.
func NewStart() Reader {
	return &Start{
		Base: plugin.NewBase("start",
			"Emits a single record to kick off the pipeline."),
		value: "start",
	}
}

// DefineFlags declares the reader's options.
func (r *Start) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&r.value, "value", r.value, "Content of the emitted record.")
}

// ParseArgs configures the reader from command-line options.
func (r *Start) ParseArgs(args []string) error {
	return plugin.Parse(r, args)
}

// Init resets the reader for a new pass.
func (r *Start) Init(sess *session.Session) error {
	r.finished = false
	return nil
}

// Read emits the single record on the first call.
func (r *Start) Read(ctx context.Context) ([]record.Record, error) {
	if r.finished {
		return nil, nil
	}
	r.finished = true
	return []record.Record{r.value}, nil
}

// HasFinished reports whether the record has been emitted.
func (r *Start) HasFinished() bool { return r.finished }

// Close releases resources; start holds none.
func (r *Start) Close() error { return nil }

var _ Reader = (*Start)(nil)
