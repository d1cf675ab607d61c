package writer

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/pathutil"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// ToTextFile appends the text form of every record as one line to
// --output. The path may contain placeholders and is resolved at Init.
type ToTextFile struct {
	plugin.Base
	output   string
	appendTo bool

	file *os.File
	buf  *bufio.Writer
}

// NewToTextFile creates a to-text-file writer.
func NewToTextFile() Writer {
	return &ToTextFile{
		Base: plugin.NewBase("to-text-file",
			"Writes records as lines to a text file."),
	}
}

// DefineFlags declares the writer's options.
func (w *ToTextFile) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&w.output, "output", "", "Output file; may contain placeholders.")
	fs.BoolVar(&w.appendTo, "append", false, "Append to the file instead of truncating.")
}

// ParseArgs configures the writer from command-line options.
func (w *ToTextFile) ParseArgs(args []string) error {
	if err := plugin.Parse(w, args); err != nil {
		return err
	}
	if w.output == "" {
		return errhandling.NewConfigurationError("to-text-file writer: --output required", nil)
	}
	return nil
}

// Init resolves the output path and opens the file.
func (w *ToTextFile) Init(sess *session.Session) error {
	path, err := sess.Resolve(w.output)
	if err != nil {
		return err
	}
	if err := pathutil.EnsureParentDir(path); err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("to-text-file writer: cannot create directory for %s", path), err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if w.appendTo {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("to-text-file writer: cannot open %s", path), err)
	}
	w.file = file
	w.buf = bufio.NewWriter(file)
	return nil
}

// WriteRecord appends the record's text form as one line.
func (w *ToTextFile) WriteRecord(rec record.Record) error {
	if _, err := fmt.Fprintln(w.buf, render(rec)); err != nil {
		return errhandling.NewIOError("to-text-file writer: write failed", err)
	}
	return nil
}

// Finalize flushes buffered lines to disk.
func (w *ToTextFile) Finalize() error {
	if w.buf == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		return errhandling.NewIOError("to-text-file writer: flush failed", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *ToTextFile) Close() error {
	if w.file == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return errhandling.NewIOError("to-text-file writer: flush failed", err)
	}
	err := w.file.Close()
	w.file = nil
	w.buf = nil
	return err
}

var _ StreamWriter = (*ToTextFile)(nil)
