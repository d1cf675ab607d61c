package generator

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
)

// List binds a variable across an explicit list of values.
type List struct {
	SingleVariable
	values []string
}

// NewList creates an unconfigured list generator.
func NewList() Generator {
	return &List{
		SingleVariable: NewSingleVariable("list",
			"Binds the variable across an explicit list of values.", "v"),
	}
}

// DefineFlags declares the generator's options.
func (g *List) DefineFlags(fs *pflag.FlagSet) {
	g.DefineVarFlag(fs)
	fs.StringArrayVar(&g.values, "value", nil, "Value to bind; repeat for multiple values.")
}

// ParseArgs configures the generator from command-line options.
func (g *List) ParseArgs(args []string) error {
	if err := plugin.Parse(g, args); err != nil {
		return err
	}
	if len(g.values) == 0 {
		return errhandling.NewConfigurationError("list generator: at least one --value required", nil)
	}
	return nil
}

// Generate returns one binding per configured value, in order.
func (g *List) Generate() ([]Binding, error) {
	return g.Bind(g.values), nil
}

var _ Generator = (*List)(nil)
