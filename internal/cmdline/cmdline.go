// Package cmdline tokenizes plugin command-line specifications.
// A plugin spec is a shell-like string such as
//
//	list-files --dir /data --recursive
//
// and several specs may be chained in a single string with "|":
//
//	from-text-file --input a.txt | max-records --max 5
//
// Quoting follows shell rules: single quotes are literal, double quotes
// allow backslash escapes, an unquoted backslash escapes the next rune.
package cmdline

import (
	"errors"
	"fmt"
	"strings"
)

// Common tokenizing errors.
var (
	// ErrUnterminatedQuote is returned when a quote is left open.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrTrailingEscape is returned when the input ends on a backslash.
	ErrTrailingEscape = errors.New("trailing escape character")
	// ErrEmptyStage is returned when a "|" separates nothing.
	ErrEmptyStage = errors.New("empty pipeline stage")
)

// token is one tokenized argument. sep marks an unquoted standalone "|";
// a quoted or escaped pipe is an ordinary argument and never a separator.
type token struct {
	text string
	sep  bool
}

func tokenize(s string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		inToken bool
	)

	flush := func() {
		if inToken {
			tokens = append(tokens, token{text: current.String()})
			current.Reset()
			inToken = false
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch r {
		case ' ', '\t', '\n', '\r':
			flush()

		case '|':
			flush()
			tokens = append(tokens, token{text: "|", sep: true})

		case '\'':
			inToken = true
			i++
			for {
				if i >= len(runes) {
					return nil, fmt.Errorf("%w: '", ErrUnterminatedQuote)
				}
				if runes[i] == '\'' {
					break
				}
				current.WriteRune(runes[i])
				i++
			}

		case '"':
			inToken = true
			i++
			for {
				if i >= len(runes) {
					return nil, fmt.Errorf("%w: \"", ErrUnterminatedQuote)
				}
				if runes[i] == '"' {
					break
				}
				if runes[i] == '\\' && i+1 < len(runes) {
					next := runes[i+1]
					if next == '"' || next == '\\' {
						i++
					}
				}
				current.WriteRune(runes[i])
				i++
			}

		case '\\':
			if i+1 >= len(runes) {
				return nil, ErrTrailingEscape
			}
			inToken = true
			i++
			current.WriteRune(runes[i])

		default:
			inToken = true
			current.WriteRune(r)
		}
	}

	flush()
	return tokens, nil
}

// Split tokenizes a command line into arguments using shell quoting rules.
// An unquoted "|" is returned as its own token.
func Split(s string) ([]string, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.text
	}
	return out, nil
}

// Join renders tokens back into a single command line, quoting any token
// that would not survive a round trip through Split.
func Join(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = quoteToken(tok)
	}
	return strings.Join(parts, " ")
}

func quoteToken(tok string) string {
	if tok == "" {
		return "''"
	}
	if !strings.ContainsAny(tok, " \t\n\r'\"\\|") {
		return tok
	}
	// Single quotes are literal; an embedded single quote closes the
	// quote, escapes itself and reopens.
	return "'" + strings.ReplaceAll(tok, "'", `'\''`) + "'"
}

// Stages tokenizes a command line and splits it into pipeline stages at
// unquoted "|" tokens. Each stage is a non-empty token list whose first
// token is the plugin name. Quoted pipes stay inside their stage.
func Stages(s string) ([][]string, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}

	var (
		stages  [][]string
		current []string
	)
	for _, tok := range tokens {
		if tok.sep {
			if len(current) == 0 {
				return nil, ErrEmptyStage
			}
			stages = append(stages, current)
			current = nil
			continue
		}
		current = append(current, tok.text)
	}

	if len(current) > 0 {
		stages = append(stages, current)
	} else if len(stages) > 0 {
		// Spec ended on a "|".
		return nil, ErrEmptyStage
	}

	return stages, nil
}
