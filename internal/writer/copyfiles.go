package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// CopyFiles copies the files behind file-backed records into --dir. As a
// splittable writer it routes records into per-variant subdirectories,
// either from the split label in metadata or from its own splitter.
type CopyFiles struct {
	plugin.Base
	dir   string
	split splitSpec

	sess *session.Session
}

// NewCopyFiles creates a copy-files writer.
func NewCopyFiles() Writer {
	return &CopyFiles{
		Base: plugin.NewBase("copy-files",
			"Copies file-backed records into a directory."),
	}
}

// DefineFlags declares the writer's options.
func (w *CopyFiles) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&w.dir, "dir", "", "Target directory; may contain placeholders.")
	w.split.defineFlags(fs)
}

// ParseArgs configures the writer from command-line options.
func (w *CopyFiles) ParseArgs(args []string) error {
	if err := plugin.Parse(w, args); err != nil {
		return err
	}
	if w.dir == "" {
		return errhandling.NewConfigurationError("copy-files writer: --dir required", nil)
	}
	return w.split.compile(w.Name())
}

// Init resolves and creates the target directory.
func (w *CopyFiles) Init(sess *session.Session) error {
	w.sess = sess
	w.split.reset()
	dir, err := sess.Resolve(w.dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("copy-files writer: cannot create %s", dir), err)
	}
	return nil
}

// WriteRecord copies the record's backing file to its variant directory.
func (w *CopyFiles) WriteRecord(rec record.Record) error {
	source, ok := record.SourceOf(rec)
	if !ok {
		return nil
	}

	dir, err := w.sess.Resolve(w.dir)
	if err != nil {
		return err
	}
	if variant := w.split.variantOf(rec); variant != "" {
		dir = filepath.Join(dir, variant)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errhandling.NewIOError(
				fmt.Sprintf("copy-files writer: cannot create %s", dir), err)
		}
	}

	name := filepath.Base(source)
	if recName, ok := record.NameOf(rec); ok {
		name = recName
	}
	return copyFile(source, filepath.Join(dir, name))
}

// Finalize completes the pass; copy-files buffers nothing.
func (w *CopyFiles) Finalize() error { return nil }

// Close releases resources; copy-files holds none.
func (w *CopyFiles) Close() error { return nil }

// copyFile copies src to dst, truncating any existing file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("copy-files writer: cannot open %s", src), err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("copy-files writer: cannot create %s", dst), err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errhandling.NewIOError(
			fmt.Sprintf("copy-files writer: cannot copy %s to %s", src, dst), err)
	}
	return out.Close()
}

var _ StreamWriter = (*CopyFiles)(nil)
