package writer

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/pathutil"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// ToYAMLFile writes the whole pass as a YAML list to --output. As a
// splittable writer it routes records into per-variant files, the variant
// name inserted before the extension.
type ToYAMLFile struct {
	plugin.Base
	output string
	split  splitSpec

	sess *session.Session
}

// NewToYAMLFile creates a to-yaml-file writer.
func NewToYAMLFile() Writer {
	return &ToYAMLFile{
		Base: plugin.NewBase("to-yaml-file",
			"Writes the record set as a YAML list."),
	}
}

// DefineFlags declares the writer's options.
func (w *ToYAMLFile) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&w.output, "output", "", "Output file; may contain placeholders.")
	w.split.defineFlags(fs)
}

// ParseArgs configures the writer from command-line options.
func (w *ToYAMLFile) ParseArgs(args []string) error {
	if err := plugin.Parse(w, args); err != nil {
		return err
	}
	if w.output == "" {
		return errhandling.NewConfigurationError("to-yaml-file writer: --output required", nil)
	}
	return w.split.compile(w.Name())
}

// Init prepares the writer with the shared session.
func (w *ToYAMLFile) Init(sess *session.Session) error {
	w.sess = sess
	w.split.reset()
	return nil
}

// WriteBatch writes the record set, one file per variant.
func (w *ToYAMLFile) WriteBatch(records []record.Record) error {
	path, err := w.sess.Resolve(w.output)
	if err != nil {
		return err
	}

	variants := map[string][]interface{}{}
	for _, rec := range records {
		variant := w.split.variantOf(rec)
		variants[variant] = append(variants[variant], recordToYAML(rec))
	}

	for variant, docs := range variants {
		target := variantPath(path, variant)
		if err := pathutil.EnsureParentDir(target); err != nil {
			return errhandling.NewIOError(
				fmt.Sprintf("to-yaml-file writer: cannot create directory for %s", target), err)
		}
		data, err := yaml.Marshal(docs)
		if err != nil {
			return errhandling.NewIOError(
				fmt.Sprintf("to-yaml-file writer: cannot marshal %s", target), err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return errhandling.NewIOError(
				fmt.Sprintf("to-yaml-file writer: cannot write %s", target), err)
		}
	}
	return nil
}

// Close releases resources; to-yaml-file holds none.
func (w *ToYAMLFile) Close() error { return nil }

// recordToYAML renders a record as a YAML-friendly value.
func recordToYAML(rec record.Record) interface{} {
	name, hasName := record.NameOf(rec)
	if !hasName {
		return rec
	}
	doc := map[string]interface{}{"name": name}
	if source, ok := record.SourceOf(rec); ok {
		doc["source"] = source
	}
	if meta, ok := record.MetaDataOf(rec); ok && len(meta) > 0 {
		doc["metadata"] = meta
	}
	return doc
}

var _ BatchWriter = (*ToYAMLFile)(nil)
