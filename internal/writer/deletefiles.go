package writer

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/logger"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// DeleteFiles removes the files behind file-backed records. Records
// without a source are ignored; with --missing-ok an already absent file
// is not an error.
type DeleteFiles struct {
	plugin.Base
	missingOK bool
}

// NewDeleteFiles creates a delete-files writer.
func NewDeleteFiles() Writer {
	return &DeleteFiles{
		Base: plugin.NewBase("delete-files",
			"Deletes the files behind file-backed records."),
	}
}

// DefineFlags declares the writer's options.
func (w *DeleteFiles) DefineFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&w.missingOK, "missing-ok", false, "Ignore files that no longer exist.")
}

// ParseArgs configures the writer from command-line options.
func (w *DeleteFiles) ParseArgs(args []string) error {
	return plugin.Parse(w, args)
}

// Init prepares the writer with the shared session.
func (w *DeleteFiles) Init(sess *session.Session) error { return nil }

// WriteRecord deletes the record's backing file.
func (w *DeleteFiles) WriteRecord(rec record.Record) error {
	source, ok := record.SourceOf(rec)
	if !ok {
		logger.Debug("delete-files: record has no source, skipping", "record", record.Describe(rec))
		return nil
	}
	if err := os.Remove(source); err != nil {
		if w.missingOK && os.IsNotExist(err) {
			return nil
		}
		return errhandling.NewIOError(
			fmt.Sprintf("delete-files writer: cannot delete %s", source), err)
	}
	return nil
}

// Finalize completes the pass; delete-files buffers nothing.
func (w *DeleteFiles) Finalize() error { return nil }

// Close releases resources; delete-files holds none.
func (w *DeleteFiles) Close() error { return nil }

var _ StreamWriter = (*DeleteFiles)(nil)
