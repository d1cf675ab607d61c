package filter

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Tee clones every record into a nested sub-pipeline for side-effect
// processing. The original continues down the main chain unchanged;
// mutations of the clone never affect it.
type Tee struct {
	plugin.Base

	filterSpecs []string
	writerSpec  string
	depth       int

	sess     *session.Session
	subchain Subchain
}

// NewTee creates a tee meta-filter.
func NewTee() Filter {
	return &Tee{
		Base: plugin.NewBase("tee",
			"Clones every record into a nested sub-pipeline."),
	}
}

// DefineFlags declares the filter's options.
func (f *Tee) DefineFlags(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.filterSpecs, "filter", nil, "Nested filter command line; repeatable.")
	fs.StringVar(&f.writerSpec, "writer", "", "Nested writer command line.")
}

// SetNestingDepth records how deeply this filter is nested.
func (f *Tee) SetNestingDepth(depth int) { f.depth = depth }

// ParseArgs configures the filter from command-line options.
func (f *Tee) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if len(f.filterSpecs) == 0 && f.writerSpec == "" {
		return errhandling.NewConfigurationError(
			"tee filter: --filter or --writer required", nil)
	}
	return nil
}

// Init builds the nested sub-pipeline against the shared session.
func (f *Tee) Init(sess *session.Session) error {
	f.sess = sess
	sub, err := SubchainBuilder(sess, f.filterSpecs, f.writerSpec, f.depth+1)
	if err != nil {
		return err
	}
	f.subchain = sub
	return nil
}

// Process clones the record into the sub-pipeline and forwards the
// original unchanged.
func (f *Tee) Process(rec record.Record) ([]record.Record, error) {
	clone, err := f.sess.CloneRecord(rec)
	if err != nil {
		return nil, err
	}
	if err := f.subchain.Process(clone); err != nil {
		return nil, err
	}
	return []record.Record{rec}, nil
}

// Flush drains the nested sub-pipeline at end of stream.
func (f *Tee) Flush() ([]record.Record, error) {
	if f.subchain == nil {
		return nil, nil
	}
	return nil, f.subchain.Flush()
}

// Reset clears the nested sub-pipeline's state for the next binding.
func (f *Tee) Reset() {
	if f.subchain != nil {
		f.subchain.Reset()
	}
}

// Close tears down the nested sub-pipeline.
func (f *Tee) Close() error {
	if f.subchain == nil {
		return nil
	}
	return f.subchain.Close()
}

var (
	_ Filter       = (*Tee)(nil)
	_ Flusher      = (*Tee)(nil)
	_ Resetter     = (*Tee)(nil)
	_ NestingAware = (*Tee)(nil)
)
