package reader

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/find"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// ListFiles lists the files of a directory and forwards them as file
// records, sorted by name. With --as-list the whole listing is forwarded as
// a single slice record instead of one record per file.
type ListFiles struct {
	plugin.Base
	dir       string
	pattern   string
	recursive bool
	asList    bool

	sess     *session.Session
	finished bool
}

// NewListFiles creates an unconfigured list-files reader.
func NewListFiles() Reader {
	return &ListFiles{
		Base: plugin.NewBase("list-files",
			"Lists files in a directory and forwards them as records."),
		pattern: ".*",
	}
}

// DefineFlags declares the reader's options.
func (r *ListFiles) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&r.dir, "dir", "", "Directory to list; may contain placeholders.")
	fs.StringVar(&r.pattern, "regexp", r.pattern, "Regular expression the file paths must match.")
	fs.BoolVar(&r.recursive, "recursive", false, "Descend into subdirectories.")
	fs.BoolVar(&r.asList, "as-list", false, "Forward the files as a single list record.")
}

// ParseArgs configures the reader from command-line options.
func (r *ListFiles) ParseArgs(args []string) error {
	if err := plugin.Parse(r, args); err != nil {
		return err
	}
	if r.dir == "" {
		return errhandling.NewConfigurationError("list-files reader: --dir required", nil)
	}
	if _, err := regexp.Compile(r.pattern); err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("list-files reader: invalid --regexp %q", r.pattern), err)
	}
	return nil
}

// Init prepares the reader with the shared session.
func (r *ListFiles) Init(sess *session.Session) error {
	r.sess = sess
	r.finished = false
	return nil
}

// Read lists the directory once and forwards the matching files.
func (r *ListFiles) Read(ctx context.Context) ([]record.Record, error) {
	if r.finished {
		return nil, nil
	}
	r.finished = true

	dir, err := r.sess.Resolve(r.dir)
	if err != nil {
		return nil, err
	}

	result, err := find.Files(find.Options{
		Inputs:    []string{dir},
		Recursive: r.recursive,
		Match:     []string{r.pattern},
	})
	if err != nil {
		return nil, err
	}

	records := make([]record.Record, len(result.Files))
	for i, path := range result.Files {
		records[i] = record.NewFileRecord(path)
	}

	if r.asList {
		return []record.Record{records}, nil
	}
	return records, nil
}

// HasFinished reports whether the single listing pass is complete.
func (r *ListFiles) HasFinished() bool { return r.finished }

// Close releases resources; list-files holds none.
func (r *ListFiles) Close() error { return nil }

var _ Reader = (*ListFiles)(nil)
