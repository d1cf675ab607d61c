package generator

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
)

// Range binds a variable across an integer range, inclusive of both ends.
type Range struct {
	SingleVariable
	from int
	to   int
	step int
}

// NewRange creates an unconfigured range generator.
func NewRange() Generator {
	return &Range{
		SingleVariable: NewSingleVariable("range",
			"Binds the variable across an integer range.", "i"),
		from: 1,
		to:   10,
		step: 1,
	}
}

// DefineFlags declares the generator's options.
func (g *Range) DefineFlags(fs *pflag.FlagSet) {
	g.DefineVarFlag(fs)
	fs.IntVar(&g.from, "from", g.from, "First value of the range (inclusive).")
	fs.IntVar(&g.to, "to", g.to, "Last value of the range (inclusive).")
	fs.IntVar(&g.step, "step", g.step, "Increment between values; negative for descending ranges.")
}

// ParseArgs configures the generator from command-line options.
func (g *Range) ParseArgs(args []string) error {
	if err := plugin.Parse(g, args); err != nil {
		return err
	}
	if g.step == 0 {
		return errhandling.NewConfigurationError("range generator: --step must not be 0", nil)
	}
	if g.step > 0 && g.from > g.to {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("range generator: --from %d > --to %d with positive step", g.from, g.to), nil)
	}
	if g.step < 0 && g.from < g.to {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("range generator: --from %d < --to %d with negative step", g.from, g.to), nil)
	}
	return nil
}

// Generate returns one binding per value of the range.
func (g *Range) Generate() ([]Binding, error) {
	var values []string
	if g.step > 0 {
		for i := g.from; i <= g.to; i += g.step {
			values = append(values, strconv.Itoa(i))
		}
	} else {
		for i := g.from; i >= g.to; i += g.step {
			values = append(values, strconv.Itoa(i))
		}
	}
	return g.Bind(values), nil
}

var _ Generator = (*Range)(nil)
