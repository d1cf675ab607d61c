package filter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/template"
)

// Rename rewrites the record name from a template. Besides session
// placeholders the format knows {name} (the stem without extension),
// {ext} (extension including the dot), {pdir} (parent directory of the
// source), {count} (running record counter) and {occurrences} (how often
// the original name has been seen). Records without a name pass untouched.
type Rename struct {
	plugin.Base
	nameFormat string

	sess        *session.Session
	count       int
	occurrences map[string]int
}

// NewRename creates a rename filter.
func NewRename() Filter {
	return &Rename{
		Base: plugin.NewBase("rename",
			"Rewrites record names from a template."),
	}
}

// DefineFlags declares the filter's options.
func (f *Rename) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.nameFormat, "name-format", "",
		"Name template; {name}, {ext}, {pdir}, {count}, {occurrences} and placeholders are expanded.")
}

// ParseArgs configures the filter from command-line options.
func (f *Rename) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.nameFormat == "" {
		return errhandling.NewConfigurationError("rename filter: --name-format required", nil)
	}
	if err := template.ValidateSyntax(f.nameFormat); err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("rename filter: invalid --name-format %q", f.nameFormat), err)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *Rename) Init(sess *session.Session) error {
	f.sess = sess
	f.count = 0
	f.occurrences = make(map[string]int)
	return nil
}

// Process rewrites the record name from the template.
func (f *Rename) Process(rec record.Record) ([]record.Record, error) {
	namer, ok := rec.(record.NameSupporter)
	if !ok {
		return []record.Record{rec}, nil
	}
	name := namer.Name()

	f.count++
	f.occurrences[name]++

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	pdir := ""
	if source, ok := record.SourceOf(rec); ok {
		pdir = filepath.Base(filepath.Dir(source))
	}

	newName, err := template.Resolve(f.nameFormat, func(token string) (string, bool) {
		switch token {
		case "name":
			return stem, true
		case "ext":
			return ext, true
		case "pdir":
			return pdir, true
		case "count":
			return strconv.Itoa(f.count), true
		case "occurrences":
			return strconv.Itoa(f.occurrences[name]), true
		}
		value, err := f.sess.GetPlaceholder(token)
		return value, err == nil
	})
	if err != nil {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("rename filter: cannot resolve name for %s", record.Describe(rec)), err)
	}

	namer.SetName(newName)
	return []record.Record{rec}, nil
}

// Reset restarts the counters for the next binding.
func (f *Rename) Reset() {
	f.count = 0
	f.occurrences = make(map[string]int)
}

// Close releases resources; rename holds none.
func (f *Rename) Close() error { return nil }

var (
	_ Filter   = (*Rename)(nil)
	_ Resetter = (*Rename)(nil)
)
