// Package template implements the placeholder syntax used throughout plugin
// configuration strings: {name} tokens that resolve against generator
// variable bindings and session placeholders.
//
// Two substitution modes exist because the two consumers have different
// failure contracts:
//   - Substitute replaces only the tokens present in the supplied map and
//     leaves unknown tokens intact (generator bindings are applied first,
//     session placeholders later).
//   - Resolve replaces every token and fails on the first token the lookup
//     cannot satisfy (an unresolved placeholder is a configuration error,
//     never an empty string).
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches a single placeholder token. Names start with a letter
// or underscore and may contain letters, digits, underscores, dots and
// dashes, which covers session placeholders, binding variables and the
// structured tokens of the rename and log-data filters (e.g. {META.key}).
var tokenPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.\-]*)\}`)

// LookupFunc resolves a token name to its value. The boolean reports whether
// the name is known.
type LookupFunc func(name string) (string, bool)

// HasTokens reports whether s contains at least one placeholder token.
func HasTokens(s string) bool {
	return tokenPattern.MatchString(s)
}

// Tokens returns the distinct token names in s, in order of first appearance.
func Tokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Substitute replaces every token whose name appears in vars and leaves the
// remaining tokens untouched. It never fails: unknown tokens are someone
// else's to resolve.
func Substitute(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "{") {
		return s
	}

	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return tok
	})
}

// Resolve replaces every token in s using lookup. The first token the lookup
// cannot satisfy aborts resolution with an error naming that token.
func Resolve(s string, lookup LookupFunc) (string, error) {
	if !strings.Contains(s, "{") {
		return s, nil
	}

	var unresolved string
	result := tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		if unresolved != "" {
			return tok
		}
		name := tok[1 : len(tok)-1]
		value, ok := lookup(name)
		if !ok {
			unresolved = name
			return tok
		}
		return value
	})

	if unresolved != "" {
		return "", fmt.Errorf("unresolved placeholder {%s} in %q", unresolved, s)
	}
	return result, nil
}

// ValidateSyntax checks that every opening brace in s is part of a
// well-formed token: balanced, non-empty, and a legal name. Text without
// braces is always valid.
func ValidateSyntax(s string) error {
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '{':
			if depth > 0 {
				return fmt.Errorf("nested placeholder at offset %d", i)
			}
			depth++
			start = i
		case '}':
			if depth == 0 {
				return fmt.Errorf("unmatched '}' at offset %d", i)
			}
			depth--
			name := s[start+1 : i]
			if name == "" {
				return fmt.Errorf("empty placeholder at offset %d", start)
			}
			if !tokenPattern.MatchString("{" + name + "}") {
				return fmt.Errorf("invalid placeholder name %q at offset %d", name, start)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unterminated placeholder at offset %d", start)
	}
	return nil
}

// ValueToString renders a placeholder value for substitution. Strings pass
// through; integral floats avoid exponent notation; everything else falls
// back to fmt.
func ValueToString(value interface{}) string {
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
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
