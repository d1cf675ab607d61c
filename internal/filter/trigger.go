package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Trigger evaluates its condition per record and, when it matches, routes
// the original record through a nested sub-pipeline before the main chain
// continues. With --discard the matching record does not continue down the
// main chain.
type Trigger struct {
	plugin.Base
	match matchFlags

	filterSpecs []string
	writerSpec  string
	discard     bool
	depth       int

	subchain Subchain
}

// NewTrigger creates a trigger meta-filter.
func NewTrigger() Filter {
	return &Trigger{
		Base: plugin.NewBase("trigger",
			"Routes matching records through a nested sub-pipeline."),
	}
}

// DefineFlags declares the filter's options.
func (f *Trigger) DefineFlags(fs *pflag.FlagSet) {
	f.match.defineNameFlag(fs)
	f.match.defineMetaFlags(fs)
	fs.StringArrayVar(&f.filterSpecs, "filter", nil, "Nested filter command line; repeatable.")
	fs.StringVar(&f.writerSpec, "writer", "", "Nested writer command line.")
	fs.BoolVar(&f.discard, "discard", false, "Drop matching records from the main chain.")
}

// SetNestingDepth records how deeply this filter is nested.
func (f *Trigger) SetNestingDepth(depth int) { f.depth = depth }

// ParseArgs configures the filter from command-line options.
func (f *Trigger) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if !f.match.hasCondition() {
		return errhandling.NewConfigurationError(
			"trigger filter: --name-pattern or --field required", nil)
	}
	if len(f.filterSpecs) == 0 && f.writerSpec == "" {
		return errhandling.NewConfigurationError(
			"trigger filter: --filter or --writer required", nil)
	}
	return f.match.compile(f.Name())
}

// Init builds the nested sub-pipeline against the shared session.
func (f *Trigger) Init(sess *session.Session) error {
	sub, err := SubchainBuilder(sess, f.filterSpecs, f.writerSpec, f.depth+1)
	if err != nil {
		return err
	}
	f.subchain = sub
	return nil
}

// Process routes matching records through the sub-pipeline.
func (f *Trigger) Process(rec record.Record) ([]record.Record, error) {
	matched, err := f.match.matches(rec)
	if err != nil {
		return nil, err
	}
	if !matched {
		return []record.Record{rec}, nil
	}
	if err := f.subchain.Process(rec); err != nil {
		return nil, err
	}
	if f.discard {
		return nil, nil
	}
	return []record.Record{rec}, nil
}

// Flush drains the nested sub-pipeline at end of stream.
func (f *Trigger) Flush() ([]record.Record, error) {
	if f.subchain == nil {
		return nil, nil
	}
	return nil, f.subchain.Flush()
}

// Reset clears the nested sub-pipeline's state for the next binding.
func (f *Trigger) Reset() {
	if f.subchain != nil {
		f.subchain.Reset()
	}
}

// Close tears down the nested sub-pipeline.
func (f *Trigger) Close() error {
	if f.subchain == nil {
		return nil
	}
	return f.subchain.Close()
}

var (
	_ Filter       = (*Trigger)(nil)
	_ Flusher      = (*Trigger)(nil)
	_ Resetter     = (*Trigger)(nil)
	_ NestingAware = (*Trigger)(nil)
)
