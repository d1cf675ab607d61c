package reader

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// FromTextFile forwards the lines of a text file as plain string records.
type FromTextFile struct {
	plugin.Base
	input      string
	skipEmpty  bool
	chunkLines int

	sess     *session.Session
	file     *os.File
	scanner  *bufio.Scanner
	finished bool
}

// NewFromTextFile creates an unconfigured from-text-file reader.
func NewFromTextFile() Reader {
	return &FromTextFile{
		Base: plugin.NewBase("from-text-file",
			"Forwards the lines of a text file as string records."),
		chunkLines: 100,
	}
}

// DefineFlags declares the reader's options.
func (r *FromTextFile) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&r.input, "input", "", "Text file to read; may contain placeholders.")
	fs.BoolVar(&r.skipEmpty, "skip-empty", false, "Skip empty lines.")
	fs.IntVar(&r.chunkLines, "chunk", r.chunkLines, "Maximum number of lines per read chunk.")
}

// ParseArgs configures the reader from command-line options.
func (r *FromTextFile) ParseArgs(args []string) error {
	if err := plugin.Parse(r, args); err != nil {
		return err
	}
	if r.input == "" {
		return errhandling.NewConfigurationError("from-text-file reader: --input required", nil)
	}
	if r.chunkLines < 1 {
		return errhandling.NewConfigurationError("from-text-file reader: --chunk must be >= 1", nil)
	}
	return nil
}

// Init opens the input file.
func (r *FromTextFile) Init(sess *session.Session) error {
	r.sess = sess
	r.finished = false

	path, err := sess.Resolve(r.input)
	if err != nil {
		return err
	}

	r.file, err = os.Open(path)
	if err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("from-text-file reader: cannot open %s", path), err)
	}
	r.scanner = bufio.NewScanner(r.file)
	return nil
}

// Read returns the next chunk of lines.
func (r *FromTextFile) Read(ctx context.Context) ([]record.Record, error) {
	if r.finished {
		return nil, nil
	}

	var records []record.Record
	for len(records) < r.chunkLines {
		if !r.scanner.Scan() {
			r.finished = true
			if err := r.scanner.Err(); err != nil {
				return records, errhandling.NewIOError(
					fmt.Sprintf("from-text-file reader: cannot read %s", r.input), err)
			}
			break
		}
		line := r.scanner.Text()
		if r.skipEmpty && line == "" {
			continue
		}
		records = append(records, line)
	}
	return records, nil
}

// HasFinished reports whether the file has been fully read.
func (r *FromTextFile) HasFinished() bool { return r.finished }

// Close closes the input file.
func (r *FromTextFile) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

var _ Reader = (*FromTextFile)(nil)
