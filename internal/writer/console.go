package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Console prints every record to stdout as it arrives. With --describe the
// full record description is printed instead of the text form; --prefix is
// prepended to every line.
type Console struct {
	plugin.Base
	describe bool
	prefix   string

	out io.Writer
}

// NewConsole creates a console writer.
func NewConsole() Writer {
	return &Console{
		Base: plugin.NewBase("console", "Prints records to stdout."),
	}
}

// DefineFlags declares the writer's options.
func (w *Console) DefineFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&w.describe, "describe", false, "Print the full record description.")
	fs.StringVar(&w.prefix, "prefix", "", "String prepended to every printed line.")
}

// ParseArgs configures the writer from command-line options.
func (w *Console) ParseArgs(args []string) error {
	return plugin.Parse(w, args)
}

// Init prepares the writer with the shared session.
func (w *Console) Init(sess *session.Session) error {
	if w.out == nil {
		w.out = os.Stdout
	}
	return nil
}

// WriteRecord prints the record.
func (w *Console) WriteRecord(rec record.Record) error {
	text := render(rec)
	if w.describe {
		text = record.Describe(rec)
	}
	_, err := fmt.Fprintln(w.out, w.prefix+text)
	return err
}

// Finalize completes the pass; console buffers nothing.
func (w *Console) Finalize() error { return nil }

// Close releases resources; console holds none.
func (w *Console) Close() error { return nil }

var _ StreamWriter = (*Console)(nil)
