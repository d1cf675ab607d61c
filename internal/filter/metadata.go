package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/template"
)

// Metadata attaches fixed key=value pairs to the metadata of passing
// records. Existing keys are kept unless --force is given.
type Metadata struct {
	plugin.Base
	rawPairs []string
	force    bool

	pairs map[string]string
}

// NewMetadata creates a metadata filter.
func NewMetadata() Filter {
	return &Metadata{
		Base: plugin.NewBase("metadata",
			"Attaches fixed key=value pairs to record metadata."),
	}
}

// DefineFlags declares the filter's options.
func (f *Metadata) DefineFlags(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.rawPairs, "pair", nil, "key=value pair to attach; repeatable.")
	fs.BoolVar(&f.force, "force", false, "Overwrite existing keys.")
}

// ParseArgs configures the filter from command-line options.
func (f *Metadata) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if len(f.rawPairs) == 0 {
		return errhandling.NewConfigurationError("metadata filter: at least one --pair required", nil)
	}
	f.pairs = make(map[string]string, len(f.rawPairs))
	for _, raw := range f.rawPairs {
		key, value, found := strings.Cut(raw, "=")
		if !found || key == "" {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("metadata filter: malformed --pair %q, expected key=value", raw), nil)
		}
		f.pairs[key] = value
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *Metadata) Init(sess *session.Session) error { return nil }

// Process attaches the configured pairs to the record.
func (f *Metadata) Process(rec record.Record) ([]record.Record, error) {
	for key, value := range f.pairs {
		if !f.force {
			if _, exists := record.MetaValue(rec, key); exists {
				continue
			}
		}
		record.SetMetaValue(rec, key, value)
	}
	return []record.Record{rec}, nil
}

// Close releases resources; metadata holds none.
func (f *Metadata) Close() error { return nil }

var _ Filter = (*Metadata)(nil)

// MetadataFromName derives metadata from the record name using the named
// capture groups of --pattern. Records whose name does not match, or
// without a name, pass untouched.
type MetadataFromName struct {
	plugin.Base
	pattern string

	regex *regexp.Regexp
}

// NewMetadataFromName creates a metadata-from-name filter.
func NewMetadataFromName() Filter {
	return &MetadataFromName{
		Base: plugin.NewBase("metadata-from-name",
			"Derives metadata from named capture groups on the record name."),
	}
}

// DefineFlags declares the filter's options.
func (f *MetadataFromName) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.pattern, "pattern", "", "Regular expression with named capture groups.")
}

// ParseArgs configures the filter from command-line options.
func (f *MetadataFromName) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.pattern == "" {
		return errhandling.NewConfigurationError("metadata-from-name filter: --pattern required", nil)
	}
	regex, err := regexp.Compile(f.pattern)
	if err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("metadata-from-name filter: invalid --pattern %q", f.pattern), err)
	}
	named := false
	for _, name := range regex.SubexpNames() {
		if name != "" {
			named = true
		}
	}
	if !named {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("metadata-from-name filter: --pattern %q has no named groups", f.pattern), nil)
	}
	f.regex = regex
	return nil
}

// Init prepares the filter with the shared session.
func (f *MetadataFromName) Init(sess *session.Session) error { return nil }

// Process extracts the named groups into record metadata.
func (f *MetadataFromName) Process(rec record.Record) ([]record.Record, error) {
	name, ok := record.NameOf(rec)
	if !ok {
		return []record.Record{rec}, nil
	}
	match := f.regex.FindStringSubmatch(name)
	if match == nil {
		return []record.Record{rec}, nil
	}
	for i, group := range f.regex.SubexpNames() {
		if group == "" || i >= len(match) {
			continue
		}
		record.SetMetaValue(rec, group, match[i])
	}
	return []record.Record{rec}, nil
}

// Close releases resources; metadata-from-name holds none.
func (f *MetadataFromName) Close() error { return nil }

var _ Filter = (*MetadataFromName)(nil)

// MetadataToPlaceholder promotes a metadata value into a session
// placeholder, making it visible to all later stages.
type MetadataToPlaceholder struct {
	plugin.Base
	field       string
	placeholder string

	sess *session.Session
}

// NewMetadataToPlaceholder creates a metadata-to-placeholder filter.
func NewMetadataToPlaceholder() Filter {
	return &MetadataToPlaceholder{
		Base: plugin.NewBase("metadata-to-placeholder",
			"Promotes a metadata value into a session placeholder."),
	}
}

// DefineFlags declares the filter's options.
func (f *MetadataToPlaceholder) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.field, "field", "", "Metadata field to promote.")
	fs.StringVar(&f.placeholder, "placeholder", "", "Placeholder name to set.")
}

// ParseArgs configures the filter from command-line options.
func (f *MetadataToPlaceholder) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.field == "" || f.placeholder == "" {
		return errhandling.NewConfigurationError(
			"metadata-to-placeholder filter: --field and --placeholder required", nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *MetadataToPlaceholder) Init(sess *session.Session) error {
	f.sess = sess
	return nil
}

// Process copies the metadata value into the placeholder when present.
func (f *MetadataToPlaceholder) Process(rec record.Record) ([]record.Record, error) {
	if value, ok := record.MetaValue(rec, f.field); ok {
		f.sess.SetPlaceholder(f.placeholder, template.ValueToString(value))
	}
	return []record.Record{rec}, nil
}

// Close releases resources; metadata-to-placeholder holds none.
func (f *MetadataToPlaceholder) Close() error { return nil }

var _ Filter = (*MetadataToPlaceholder)(nil)

// Metadata value types for set-metadata.
const (
	TypeString  = "string"
	TypeBool    = "bool"
	TypeNumeric = "numeric"
)

// SetMetadata unconditionally writes a metadata field, coercing the value
// to the requested type.
type SetMetadata struct {
	plugin.Base
	field  string
	value  string
	asType string

	coerced interface{}
}

// NewSetMetadata creates a set-metadata filter.
func NewSetMetadata() Filter {
	return &SetMetadata{
		Base: plugin.NewBase("set-metadata",
			"Overwrites a metadata field with a typed value."),
		asType: TypeString,
	}
}

// DefineFlags declares the filter's options.
func (f *SetMetadata) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.field, "field", "", "Metadata field to set.")
	fs.StringVar(&f.value, "value", "", "Value to store.")
	fs.StringVar(&f.asType, "as-type", f.asType, "Value type: string, bool or numeric.")
}

// ParseArgs configures the filter from command-line options.
func (f *SetMetadata) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.field == "" {
		return errhandling.NewConfigurationError("set-metadata filter: --field required", nil)
	}
	switch f.asType {
	case TypeString:
		f.coerced = f.value
	case TypeBool:
		parsed, err := strconv.ParseBool(f.value)
		if err != nil {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("set-metadata filter: %q is not a bool", f.value), err)
		}
		f.coerced = parsed
	case TypeNumeric:
		parsed, err := strconv.ParseFloat(f.value, 64)
		if err != nil {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("set-metadata filter: %q is not numeric", f.value), err)
		}
		f.coerced = parsed
	default:
		return errhandling.NewConfigurationError(
			fmt.Sprintf("set-metadata filter: invalid --as-type %q", f.asType), nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *SetMetadata) Init(sess *session.Session) error { return nil }

// Process overwrites the metadata field with the coerced value.
func (f *SetMetadata) Process(rec record.Record) ([]record.Record, error) {
	record.SetMetaValue(rec, f.field, f.coerced)
	return []record.Record{rec}, nil
}

// Close releases resources; set-metadata holds none.
func (f *SetMetadata) Close() error { return nil }

var _ Filter = (*SetMetadata)(nil)
