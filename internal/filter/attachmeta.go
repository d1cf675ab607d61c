package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// AttachMetadata loads a sidecar JSON file named after the record
// (<stem>.json in --dir) and merges its top-level keys into the record
// metadata. A missing sidecar passes the record untouched; existing keys
// are kept unless --force is given.
type AttachMetadata struct {
	plugin.Base
	dir   string
	force bool

	sess *session.Session
}

// NewAttachMetadata creates an attach-metadata filter.
func NewAttachMetadata() Filter {
	return &AttachMetadata{
		Base: plugin.NewBase("attach-metadata",
			"Merges sidecar JSON files into record metadata."),
	}
}

// DefineFlags declares the filter's options.
func (f *AttachMetadata) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.dir, "dir", "", "Directory holding the sidecar files; may contain placeholders.")
	fs.BoolVar(&f.force, "force", false, "Overwrite existing metadata keys.")
}

// ParseArgs configures the filter from command-line options.
func (f *AttachMetadata) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.dir == "" {
		return errhandling.NewConfigurationError("attach-metadata filter: --dir required", nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *AttachMetadata) Init(sess *session.Session) error {
	f.sess = sess
	return nil
}

// Process merges the record's sidecar JSON into its metadata.
func (f *AttachMetadata) Process(rec record.Record) ([]record.Record, error) {
	name, ok := record.NameOf(rec)
	if !ok {
		return []record.Record{rec}, nil
	}

	dir, err := f.sess.Resolve(f.dir)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	sidecar := filepath.Join(dir, stem+".json")
	data, err := os.ReadFile(sidecar)
	if os.IsNotExist(err) {
		return []record.Record{rec}, nil
	}
	if err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("attach-metadata filter: cannot read %s", sidecar), err)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("attach-metadata filter: malformed JSON in %s", sidecar), err)
	}

	for key, value := range meta {
		if !f.force {
			if _, exists := record.MetaValue(rec, key); exists {
				continue
			}
		}
		record.SetMetaValue(rec, key, value)
	}
	return []record.Record{rec}, nil
}

// Close releases resources; attach-metadata holds none.
func (f *AttachMetadata) Close() error { return nil }

var _ Filter = (*AttachMetadata)(nil)
