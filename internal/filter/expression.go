package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Expression keeps records for which the compiled predicate evaluates to a
// truthy value and drops the rest. The expression sees the record name and
// source plus the metadata map under "meta"; plain string records are
// exposed as "value". Missing fields evaluate to nil rather than failing.
type Expression struct {
	plugin.Base
	expression string

	program *vm.Program
}

// NewExpression creates an expression filter.
func NewExpression() Filter {
	return &Expression{
		Base: plugin.NewBase("expression",
			"Keeps records matching a compiled predicate."),
	}
}

// DefineFlags declares the filter's options.
func (f *Expression) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.expression, "expression", "", "Predicate over name, source, value and meta.*.")
}

// ParseArgs configures the filter from command-line options.
func (f *Expression) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if f.expression == "" {
		return errhandling.NewConfigurationError("expression filter: --expression required", nil)
	}
	// AllowUndefinedVariables handles records lacking a capability gracefully
	program, err := expr.Compile(f.expression, expr.AllowUndefinedVariables())
	if err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("expression filter: invalid --expression %q", f.expression), err)
	}
	f.program = program
	return nil
}

// Init prepares the filter with the shared session.
func (f *Expression) Init(sess *session.Session) error { return nil }

// Process evaluates the predicate and keeps truthy records.
func (f *Expression) Process(rec record.Record) ([]record.Record, error) {
	env := map[string]interface{}{}
	if name, ok := record.NameOf(rec); ok {
		env["name"] = name
	}
	if source, ok := record.SourceOf(rec); ok {
		env["source"] = source
	}
	if meta, ok := record.MetaDataOf(rec); ok {
		env["meta"] = meta
	} else {
		env["meta"] = map[string]interface{}{}
	}
	if value, ok := rec.(string); ok {
		env["value"] = value
	}

	output, err := expr.Run(f.program, env)
	if err != nil {
		return nil, errhandling.NewProcessError(f.Name(), record.Describe(rec), err)
	}
	if truthy(output) {
		return []record.Record{rec}, nil
	}
	return nil, nil
}

// Close releases resources; expression holds none.
func (f *Expression) Close() error { return nil }

// truthy converts an expression result to a keep/drop decision.
func truthy(value interface{}) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

var _ Filter = (*Expression)(nil)
