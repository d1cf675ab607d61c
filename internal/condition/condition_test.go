// Package condition provides field comparisons against record metadata.
package condition

import (
	"errors"
	"testing"

	"github.com/waikato-datamining/kasperl/internal/record"
)

// TestParseOperator tests operator parsing against the closed set.
func TestParseOperator(t *testing.T) {
	tests := []struct {
		input   string
		want    Operator
		wantErr bool
	}{
		{"eq", OpEqual, false},
		{"ne", OpNotEqual, false},
		{"lt", OpLessThan, false},
		{"gt", OpGreaterThan, false},
		{"le", OpLessEqual, false},
		{"ge", OpGreaterEqual, false},
		{"contains", OpContains, false},
		{"matches", OpMatches, false},
		{"EQ", OpEqual, false},
		{"  ge  ", OpGreaterEqual, false},
		{"", "", true},
		{"equals", "", true},
		{"regex", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOperator(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOperator(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrUnknownOperator) {
					t.Errorf("error = %v, want ErrUnknownOperator", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseOperator(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestNew tests condition construction and validation.
func TestNew(t *testing.T) {
	t.Run("valid condition", func(t *testing.T) {
		cond, err := New("score", "ge", "0.5")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if cond.Field != "score" || cond.Operator != OpGreaterEqual || cond.Value != "0.5" {
			t.Errorf("New() = %+v, unexpected fields", cond)
		}
	})

	t.Run("empty field", func(t *testing.T) {
		if _, err := New("  ", "eq", "x"); !errors.Is(err, ErrEmptyField) {
			t.Errorf("New() error = %v, want ErrEmptyField", err)
		}
	})

	t.Run("unknown operator", func(t *testing.T) {
		if _, err := New("score", "between", "x"); !errors.Is(err, ErrUnknownOperator) {
			t.Errorf("New() error = %v, want ErrUnknownOperator", err)
		}
	})

	t.Run("invalid matches pattern", func(t *testing.T) {
		if _, err := New("name", "matches", "("); err == nil {
			t.Error("New() error = nil, want compile error for bad pattern")
		}
	})
}

// TestCompare tests the single comparison dispatch across operators.
func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		operator string
		value    string
		actual   interface{}
		want     bool
	}{
		// Equality
		{"eq strings equal", "f", "eq", "cat", "cat", true},
		{"eq strings differ", "f", "eq", "cat", "dog", false},
		{"eq numeric forms", "f", "eq", "1", 1.0, true},
		{"ne strings differ", "f", "ne", "cat", "dog", true},
		{"ne strings equal", "f", "ne", "cat", "cat", false},

		// Numeric ordering
		{"lt numeric true", "f", "lt", "10", 9, true},
		{"lt numeric false on equal", "f", "lt", "10", 10, false},
		{"gt numeric true", "f", "gt", "0.5", 0.75, true},
		{"gt numeric false", "f", "gt", "0.5", 0.25, false},
		{"le numeric equal", "f", "le", "10", 10, true},
		{"ge numeric equal", "f", "ge", "10", 10, true},
		{"ge numeric below", "f", "ge", "10", 9.9, false},

		// Numeric-first: "9" < "10" numerically even though "9" > "10" as strings
		{"lt numeric not lexicographic", "f", "lt", "10", "9", true},

		// String ordering fallback
		{"lt string fallback", "f", "lt", "banana", "apple", true},
		{"gt string fallback", "f", "gt", "apple", "banana", true},

		// Substring and pattern
		{"contains hit", "f", "contains", "ann", "annotations", true},
		{"contains miss", "f", "contains", "xyz", "annotations", false},
		{"matches hit", "f", "matches", `^img_\d+$`, "img_042", true},
		{"matches miss", "f", "matches", `^img_\d+$`, "photo_042", false},
		{"matches partial anchor", "f", "matches", `\d+`, "abc123", true},

		// Non-string metadata values
		{"bool equality", "f", "eq", "true", true, true},
		{"nil never equals value", "f", "eq", "x", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := New(tt.field, tt.operator, tt.value)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			got, err := cond.Compare(tt.actual)
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare(%v) = %v, want %v", tt.actual, got, tt.want)
			}
		})
	}
}

// TestEvaluate tests evaluation against record metadata.
func TestEvaluate(t *testing.T) {
	rec := record.NewFileRecord("/data/a.txt")
	rec.SetMetaData(map[string]interface{}{
		"score": 0.8,
		"label": "cat",
	})

	t.Run("matching condition", func(t *testing.T) {
		cond, err := New("score", "ge", "0.5")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		got, err := cond.Evaluate(rec)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if !got {
			t.Error("Evaluate() = false, want true")
		}
	})

	t.Run("non-matching condition", func(t *testing.T) {
		cond, err := New("label", "eq", "dog")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		got, err := cond.Evaluate(rec)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got {
			t.Error("Evaluate() = true, want false")
		}
	})

	t.Run("missing field never matches", func(t *testing.T) {
		cond, err := New("missing", "ne", "anything")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		got, err := cond.Evaluate(rec)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got {
			t.Error("Evaluate() = true for missing field, want false")
		}
	})

	t.Run("record without metadata capability", func(t *testing.T) {
		cond, err := New("score", "ge", "0.5")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		got, err := cond.Evaluate("just a string record")
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got {
			t.Error("Evaluate() = true without metadata capability, want false")
		}
	})
}

// TestOperators tests the display list.
func TestOperators(t *testing.T) {
	names := Operators()
	if len(names) != 8 {
		t.Fatalf("len(Operators()) = %d, want 8", len(names))
	}
	want := []string{"eq", "ne", "lt", "gt", "le", "ge", "contains", "matches"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Operators()[%d] = %q, want %q", i, names[i], name)
		}
	}
}
