package filter

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// RecordWindow holds records in a bounded FIFO of --size records. Once the
// window is full, admitting a new record emits the oldest one. Whatever is
// still buffered at end of stream is flushed in order.
type RecordWindow struct {
	plugin.Base
	size int

	buffer []record.Record
}

// NewRecordWindow creates a record-window filter.
func NewRecordWindow() Filter {
	return &RecordWindow{
		Base: plugin.NewBase("record-window",
			"Delays records through a bounded FIFO window."),
		size: 10,
	}
}

// DefineFlags declares the filter's options.
func (f *RecordWindow) DefineFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.size, "size", f.size, "Window size in records.")
}

// ParseArgs configures the filter from command-line options.
func (f *RecordWindow) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.size < 1 {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("record-window filter: --size must be at least 1, got %d", f.size), nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *RecordWindow) Init(sess *session.Session) error {
	f.buffer = nil
	return nil
}

// Process admits the record, emitting the oldest when the window is full.
func (f *RecordWindow) Process(rec record.Record) ([]record.Record, error) {
	if len(f.buffer) < f.size {
		f.buffer = append(f.buffer, rec)
		return nil, nil
	}
	oldest := f.buffer[0]
	copy(f.buffer, f.buffer[1:])
	f.buffer[len(f.buffer)-1] = rec
	return []record.Record{oldest}, nil
}

// Flush emits the remaining window contents in order.
func (f *RecordWindow) Flush() ([]record.Record, error) {
	out := f.buffer
	f.buffer = nil
	return out, nil
}

// Reset discards the window contents for the next binding.
func (f *RecordWindow) Reset() { f.buffer = nil }

// Close releases resources; record-window holds none.
func (f *RecordWindow) Close() error { return nil }

var (
	_ Filter   = (*RecordWindow)(nil)
	_ Flusher  = (*RecordWindow)(nil)
	_ Resetter = (*RecordWindow)(nil)
)
