package filter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// MoveFiles relocates the files behind file-backed records into --dir and
// forwards the record with its source updated to the new location.
// Records without a source pass untouched.
type MoveFiles struct {
	plugin.Base
	dir string

	sess *session.Session
}

// NewMoveFiles creates a move-files filter.
func NewMoveFiles() Filter {
	return &MoveFiles{
		Base: plugin.NewBase("move-files",
			"Relocates file-backed records into a directory."),
	}
}

// DefineFlags declares the filter's options.
func (f *MoveFiles) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.dir, "dir", "", "Target directory; may contain placeholders.")
}

// ParseArgs configures the filter from command-line options.
func (f *MoveFiles) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.dir == "" {
		return errhandling.NewConfigurationError("move-files filter: --dir required", nil)
	}
	return nil
}

// Init resolves and creates the target directory.
func (f *MoveFiles) Init(sess *session.Session) error {
	f.sess = sess
	dir, err := sess.Resolve(f.dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("move-files filter: cannot create %s", dir), err)
	}
	return nil
}

// Process moves the backing file and forwards the updated record.
func (f *MoveFiles) Process(rec record.Record) ([]record.Record, error) {
	sourcer, ok := rec.(record.SourceSupporter)
	if !ok {
		return []record.Record{rec}, nil
	}

	dir, err := f.sess.Resolve(f.dir)
	if err != nil {
		return nil, err
	}
	source := sourcer.Source()
	target := filepath.Join(dir, filepath.Base(source))
	if err := os.Rename(source, target); err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("move-files filter: cannot move %s to %s", source, target), err)
	}
	sourcer.SetSource(target)
	return []record.Record{rec}, nil
}

// Close releases resources; move-files holds none.
func (f *MoveFiles) Close() error { return nil }

var _ Filter = (*MoveFiles)(nil)
