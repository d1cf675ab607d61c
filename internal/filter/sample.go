package filter

import (
	"fmt"
	"math/rand"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Sample passes each record with independent probability --probability.
// Under a fixed --seed the decisions are deterministic. Records are never
// reordered.
type Sample struct {
	plugin.Base
	probability float64
	seed        int64

	rng *rand.Rand
}

// NewSample creates a sample filter.
func NewSample() Filter {
	return &Sample{
		Base: plugin.NewBase("sample",
			"Passes each record with a fixed probability."),
		probability: 0.5,
		seed:        1,
	}
}

// DefineFlags declares the filter's options.
func (f *Sample) DefineFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&f.probability, "probability", f.probability, "Probability of passing a record (0..1).")
	fs.Int64Var(&f.seed, "seed", f.seed, "Seed for the random number generator.")
}

// ParseArgs configures the filter from command-line options.
func (f *Sample) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.probability < 0 || f.probability > 1 {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("sample filter: --probability must be in [0,1], got %g", f.probability), nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *Sample) Init(sess *session.Session) error {
	f.rng = rand.New(rand.NewSource(f.seed))
	return nil
}

// Process passes the record with the configured probability.
func (f *Sample) Process(rec record.Record) ([]record.Record, error) {
	if f.rng.Float64() < f.probability {
		return []record.Record{rec}, nil
	}
	return nil, nil
}

// Reset re-seeds the generator for the next binding.
func (f *Sample) Reset() { f.rng = rand.New(rand.NewSource(f.seed)) }

// Close releases resources; sample holds none.
func (f *Sample) Close() error { return nil }

var (
	_ Filter   = (*Sample)(nil)
	_ Resetter = (*Sample)(nil)
)
