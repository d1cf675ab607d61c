// Package condition provides field comparisons against record metadata.
// Conditions are a closed set of operators dispatched by a single compare
// function; no user code is ever executed during evaluation.
package condition

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/waikato-datamining/kasperl/internal/record"
)

// Operator identifies a comparison operator.
type Operator string

// Supported comparison operators.
const (
	OpEqual        Operator = "eq"
	OpNotEqual     Operator = "ne"
	OpLessThan     Operator = "lt"
	OpGreaterThan  Operator = "gt"
	OpLessEqual    Operator = "le"
	OpGreaterEqual Operator = "ge"
	OpContains     Operator = "contains"
	OpMatches      Operator = "matches"
)

// Common errors for condition parsing and evaluation.
var (
	// ErrUnknownOperator is returned when the operator is not in the closed set.
	ErrUnknownOperator = errors.New("unknown comparison operator")
	// ErrEmptyField is returned when no field was specified.
	ErrEmptyField = errors.New("condition field cannot be empty")
)

// operators lists the closed set in help-text order.
var operators = []Operator{
	OpEqual, OpNotEqual, OpLessThan, OpGreaterThan,
	OpLessEqual, OpGreaterEqual, OpContains, OpMatches,
}

// Operators returns the supported operator names in display order.
func Operators() []string {
	names := make([]string, len(operators))
	for i, op := range operators {
		names[i] = string(op)
	}
	return names
}

// ParseOperator parses an operator string into an Operator.
// Returns ErrUnknownOperator for anything outside the closed set.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range operators {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownOperator, s, strings.Join(Operators(), ", "))
}

// Condition compares a record metadata field against a fixed value.
// The regexp for the matches operator is compiled once at construction.
type Condition struct {
	Field    string
	Operator Operator
	Value    string

	pattern *regexp.Regexp
}

// New creates a condition from field, operator and value strings.
// The operator must be in the closed set; for matches the value must be a
// valid regular expression.
func New(field, operator, value string) (*Condition, error) {
	if strings.TrimSpace(field) == "" {
		return nil, ErrEmptyField
	}

	op, err := ParseOperator(operator)
	if err != nil {
		return nil, err
	}

	var pattern *regexp.Regexp
	if op == OpMatches {
		pattern, err = regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for matches: %w", err)
		}
	}

	return &Condition{
		Field:    field,
		Operator: op,
		Value:    value,
		pattern:  pattern,
	}, nil
}

// String returns a human-readable form of the condition.
func (c *Condition) String() string {
	return fmt.Sprintf("%s %s %q", c.Field, c.Operator, c.Value)
}

// Evaluate checks the condition against the record's metadata.
// A record without the field (or without metadata at all) never matches.
func (c *Condition) Evaluate(rec record.Record) (bool, error) {
	actual, ok := record.MetaValue(rec, c.Field)
	if !ok {
		return false, nil
	}
	return c.Compare(actual)
}

// Compare applies the condition's operator to an already-resolved value.
// Ordering operators compare numerically when both sides parse as numbers,
// otherwise lexicographically.
func (c *Condition) Compare(actual interface{}) (bool, error) {
	actualStr := valueToString(actual)

	switch c.Operator {
	case OpEqual:
		return compareOrder(actualStr, c.Value) == 0, nil
	case OpNotEqual:
		return compareOrder(actualStr, c.Value) != 0, nil
	case OpLessThan:
		return compareOrder(actualStr, c.Value) < 0, nil
	case OpGreaterThan:
		return compareOrder(actualStr, c.Value) > 0, nil
	case OpLessEqual:
		return compareOrder(actualStr, c.Value) <= 0, nil
	case OpGreaterEqual:
		return compareOrder(actualStr, c.Value) >= 0, nil
	case OpContains:
		return strings.Contains(actualStr, c.Value), nil
	case OpMatches:
		return c.pattern.MatchString(actualStr), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, c.Operator)
	}
}

// compareOrder compares two values, numeric-first with string fallback.
// Returns -1, 0, or 1.
func compareOrder(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// valueToString renders a metadata value for comparison.
func valueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// Render whole floats without a trailing .0 so numeric metadata
		// compares equal to its integer string form.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
