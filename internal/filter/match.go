package filter

import (
	"fmt"
	"regexp"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/condition"
	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/record"
)

// matchFlags holds the condition options shared by the gating filters:
// a metadata comparison (--field/--comparison/--value) and, where the
// filter supports it, a regexp against the record name (--name-pattern).
type matchFlags struct {
	field      string
	comparison string
	value      string
	pattern    string

	cond   *condition.Condition
	nameRE *regexp.Regexp
}

// defineMetaFlags declares the metadata comparison options.
func (m *matchFlags) defineMetaFlags(fs *pflag.FlagSet) {
	fs.StringVar(&m.field, "field", "", "Metadata field the condition inspects.")
	fs.StringVar(&m.comparison, "comparison", "eq",
		fmt.Sprintf("Comparison operator: %v.", condition.Operators()))
	fs.StringVar(&m.value, "value", "", "Value to compare the field against.")
}

// defineNameFlag declares the name pattern option.
func (m *matchFlags) defineNameFlag(fs *pflag.FlagSet) {
	fs.StringVar(&m.pattern, "name-pattern", "", "Regular expression matched against the record name.")
}

// hasCondition reports whether any condition option was supplied.
func (m *matchFlags) hasCondition() bool {
	return m.field != "" || m.pattern != ""
}

// compile turns the raw options into an evaluable condition.
// Called from ParseArgs; the filter name is used in error messages.
func (m *matchFlags) compile(filterName string) error {
	if m.field != "" {
		cond, err := condition.New(m.field, m.comparison, m.value)
		if err != nil {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("%s filter: invalid condition", filterName), err)
		}
		m.cond = cond
	}
	if m.pattern != "" {
		re, err := regexp.Compile(m.pattern)
		if err != nil {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("%s filter: invalid --name-pattern %q", filterName, m.pattern), err)
		}
		m.nameRE = re
	}
	return nil
}

// matches evaluates the condition against the record. With both a name
// pattern and a metadata comparison configured, either match suffices.
// Records lacking the inspected capability do not match.
func (m *matchFlags) matches(rec record.Record) (bool, error) {
	if m.nameRE != nil {
		if name, ok := record.NameOf(rec); ok && m.nameRE.MatchString(name) {
			return true, nil
		}
	}
	if m.cond != nil {
		return m.cond.Evaluate(rec)
	}
	return false, nil
}
