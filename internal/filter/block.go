package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Block drops records. Without a condition it drops everything; with
// --field/--comparison/--value it drops the records the condition matches.
type Block struct {
	plugin.Base
	match matchFlags
}

// NewBlock creates a block filter.
func NewBlock() Filter {
	return &Block{
		Base: plugin.NewBase("block",
			"Drops all records, or those matching the condition."),
	}
}

// DefineFlags declares the filter's options.
func (f *Block) DefineFlags(fs *pflag.FlagSet) {
	f.match.defineMetaFlags(fs)
}

// ParseArgs configures the filter from command-line options.
func (f *Block) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	return f.match.compile(f.Name())
}

// Init prepares the filter with the shared session.
func (f *Block) Init(sess *session.Session) error { return nil }

// Process drops the record when unconditional or when the condition holds.
func (f *Block) Process(rec record.Record) ([]record.Record, error) {
	if !f.match.hasCondition() {
		return nil, nil
	}
	matched, err := f.match.matches(rec)
	if err != nil {
		return nil, err
	}
	if matched {
		return nil, nil
	}
	return []record.Record{rec}, nil
}

// Close releases resources; block holds none.
func (f *Block) Close() error { return nil }

var _ Filter = (*Block)(nil)
