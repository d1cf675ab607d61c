// Package config parses and validates pipeline definition files (YAML/JSON).
package config

import (
	"fmt"
	"strings"
)

// Error type constants for categorizing parse errors.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)

// ParseError is a parsing error with location information.
type ParseError struct {
	// Path is the file path where the error occurred.
	Path string
	// Line is the line number (1-based, 0 if unknown).
	Line int
	// Column is the column number (1-based, 0 if unknown).
	Column int
	// Offset is the byte offset in the file (0 if unknown).
	Offset int64
	// Message is the error message.
	Message string
	// Type categorizes the error (io, syntax, format).
	Type string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d", e.Line))
		if e.Column > 0 {
			sb.WriteString(fmt.Sprintf(", column %d", e.Column))
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ValidationError is a schema validation error.
type ValidationError struct {
	// Path is the JSON path where the error occurred (e.g. "/filters/1").
	Path string
	// Type is the error type (required, type, enum, ...).
	Type string
	// Message is the error message.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Result is the combined outcome of parsing and validating a definition file.
type Result struct {
	// Data is the parsed definition as a generic map.
	Data map[string]interface{}
	// ParseErrors holds parsing errors.
	ParseErrors []ParseError
	// ValidationErrors holds schema validation errors.
	ValidationErrors []ValidationError
	// FilePath is the path of the parsed file (empty when parsed from a string).
	FilePath string
	// Format is the detected format (json, yaml).
	Format string
}

// IsValid reports whether parsing and validation both succeeded.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors returns parse and validation errors as one slice.
func (r *Result) AllErrors() []error {
	errs := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		errs = append(errs, e)
	}
	for _, e := range r.ValidationErrors {
		errs = append(errs, e)
	}
	return errs
}
