// Package generator provides variable generators that expand a pipeline
// template into concrete runs. A generator produces a finite list of
// bindings; the executor runs the pipeline once per binding, substituting
// the variables into the reader/filter/writer options.
package generator

import (
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/plugin"
)

// Binding maps variable names to the values of one pipeline run.
type Binding map[string]string

// Generator is the contract for variable generators.
// Generate materializes all bindings before any pipeline run starts.
type Generator interface {
	plugin.Plugin

	// Generate returns the finite list of bindings.
	Generate() ([]Binding, error)
}

// SingleVariable is the base for generators that bind one variable across a
// sequence of values. Concrete generators embed it and call DefineVarFlag
// from their DefineFlags.
type SingleVariable struct {
	plugin.Base
	varName string
}

// NewSingleVariable creates the base with the given plugin identity and
// default variable name.
func NewSingleVariable(name, description, defaultVar string) SingleVariable {
	return SingleVariable{
		Base:    plugin.NewBase(name, description),
		varName: defaultVar,
	}
}

// DefineVarFlag declares the shared --var option.
func (g *SingleVariable) DefineVarFlag(fs *pflag.FlagSet) {
	fs.StringVar(&g.varName, "var", g.varName, "Name of the variable to bind.")
}

// Var returns the configured variable name.
func (g *SingleVariable) Var() string { return g.varName }

// Bind wraps each value in a single-variable binding.
func (g *SingleVariable) Bind(values []string) []Binding {
	bindings := make([]Binding, len(values))
	for i, v := range values {
		bindings[i] = Binding{g.varName: v}
	}
	return bindings
}
