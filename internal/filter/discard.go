package filter

import (
	"fmt"
	"regexp"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// DiscardByName drops records whose name matches --pattern, or with
// --invert those that fail to match. Records without a name pass through.
type DiscardByName struct {
	plugin.Base
	pattern string
	invert  bool

	regex *regexp.Regexp
}

// NewDiscardByName creates a discard-by-name filter.
func NewDiscardByName() Filter {
	return &DiscardByName{
		Base: plugin.NewBase("discard-by-name",
			"Drops records whose name matches the pattern."),
	}
}

// DefineFlags declares the filter's options.
func (f *DiscardByName) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.pattern, "pattern", "", "Regular expression matched against the record name.")
	fs.BoolVar(&f.invert, "invert", false, "Drop records that do NOT match instead.")
}

// ParseArgs configures the filter from command-line options.
func (f *DiscardByName) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.pattern == "" {
		return errhandling.NewConfigurationError("discard-by-name filter: --pattern required", nil)
	}
	var err error
	f.regex, err = regexp.Compile(f.pattern)
	if err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("discard-by-name filter: invalid --pattern %q", f.pattern), err)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *DiscardByName) Init(sess *session.Session) error { return nil }

// Process drops records based on the name match.
func (f *DiscardByName) Process(rec record.Record) ([]record.Record, error) {
	name, ok := record.NameOf(rec)
	if !ok {
		return []record.Record{rec}, nil
	}
	matched := f.regex.MatchString(name)
	if matched != f.invert {
		return nil, nil
	}
	return []record.Record{rec}, nil
}

// Close releases resources; discard-by-name holds none.
func (f *DiscardByName) Close() error { return nil }

var _ Filter = (*DiscardByName)(nil)

// DiscardNegatives drops records whose annotation set is absent or empty.
type DiscardNegatives struct {
	plugin.Base
}

// NewDiscardNegatives creates a discard-negatives filter.
func NewDiscardNegatives() Filter {
	return &DiscardNegatives{
		Base: plugin.NewBase("discard-negatives",
			"Drops records without annotations."),
	}
}

// DefineFlags declares the filter's options; discard-negatives has none.
func (f *DiscardNegatives) DefineFlags(fs *pflag.FlagSet) {}

// ParseArgs configures the filter from command-line options.
func (f *DiscardNegatives) ParseArgs(args []string) error {
	return plugin.Parse(f, args)
}

// Init prepares the filter with the shared session.
func (f *DiscardNegatives) Init(sess *session.Session) error { return nil }

// Process drops records whose annotations are absent or empty.
func (f *DiscardNegatives) Process(rec record.Record) ([]record.Record, error) {
	has, _ := record.HasAnnotations(rec)
	if !has {
		return nil, nil
	}
	return []record.Record{rec}, nil
}

// Close releases resources; discard-negatives holds none.
func (f *DiscardNegatives) Close() error { return nil }

var _ Filter = (*DiscardNegatives)(nil)
