package filter

import (
	"math/rand"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Randomize buffers the whole pass and emits a uniformly shuffled
// permutation at flush. Nothing is emitted before end of stream.
type Randomize struct {
	plugin.Base
	seed int64

	buffer []record.Record
}

// NewRandomize creates a randomize-records filter.
func NewRandomize() Filter {
	return &Randomize{
		Base: plugin.NewBase("randomize-records",
			"Buffers the pass and emits the records shuffled."),
		seed: 1,
	}
}

// DefineFlags declares the filter's options.
func (f *Randomize) DefineFlags(fs *pflag.FlagSet) {
	fs.Int64Var(&f.seed, "seed", f.seed, "Seed for the shuffle.")
}

// ParseArgs configures the filter from command-line options.
func (f *Randomize) ParseArgs(args []string) error {
	return plugin.Parse(f, args)
}

// Init prepares the filter with the shared session.
func (f *Randomize) Init(sess *session.Session) error {
	f.buffer = nil
	return nil
}

// Process buffers the record until flush.
func (f *Randomize) Process(rec record.Record) ([]record.Record, error) {
	f.buffer = append(f.buffer, rec)
	return nil, nil
}

// Flush emits the buffered records in shuffled order.
func (f *Randomize) Flush() ([]record.Record, error) {
	out := f.buffer
	f.buffer = nil
	rng := rand.New(rand.NewSource(f.seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out, nil
}

// Reset discards the buffer for the next binding.
func (f *Randomize) Reset() { f.buffer = nil }

// Close releases resources; randomize-records holds none.
func (f *Randomize) Close() error { return nil }

var (
	_ Filter   = (*Randomize)(nil)
	_ Flusher  = (*Randomize)(nil)
	_ Resetter = (*Randomize)(nil)
)
