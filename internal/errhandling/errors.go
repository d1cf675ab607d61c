// Package errhandling provides error types, classification, and retry utilities.
// This file defines the pipeline error taxonomy, classification functions, and
// helper utilities for robust error handling across the engine.
package errhandling

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCategory represents the type/category of an error.
// Categories help determine the appropriate error handling strategy.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryConfiguration represents configuration errors (malformed plugin
	// spec, incompatible writer/reader pairing, unresolved placeholder).
	// Configuration errors are fatal and reported before any record is processed.
	CategoryConfiguration ErrorCategory = "configuration"

	// CategoryPluginNotFound represents unknown plugin names.
	// Fatal, reported at pipeline build time.
	CategoryPluginNotFound ErrorCategory = "plugin_not_found"

	// CategoryTimeout represents exhausted polling budgets and sub-process
	// overruns. Fatal for the current binding unless the plugin is configured
	// to tolerate and continue; retryable within a plugin's own budget.
	CategoryTimeout ErrorCategory = "timeout"

	// CategoryDuplicateRecord represents repeated record names detected by the
	// duplicate filter. Behavior (abort vs skip-and-continue) is configurable.
	CategoryDuplicateRecord ErrorCategory = "duplicate_record"

	// CategoryProcess represents per-record processing failures from a filter,
	// reported with filter name and record identity. Default policy aborts the
	// current binding.
	CategoryProcess ErrorCategory = "process"

	// CategoryIO represents file-system failures from concrete plugins.
	// IO errors are typically transient and retryable.
	CategoryIO ErrorCategory = "io"

	// CategoryUnknown represents unclassified errors.
	// Unknown errors are not retried: fail fast rather than mask a bug.
	CategoryUnknown ErrorCategory = "unknown"
)

// Sentinel errors usable with errors.Is against any ClassifiedError of the
// corresponding category.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrPluginNotFound  = errors.New("plugin not found")
	ErrTimeout         = errors.New("timeout")
	ErrDuplicateRecord = errors.New("duplicate record")
	ErrProcess         = errors.New("record processing error")
	ErrIO              = errors.New("io error")
)

// sentinelFor maps each category to its sentinel error.
func sentinelFor(category ErrorCategory) error {
	switch category {
	case CategoryConfiguration:
		return ErrConfiguration
	case CategoryPluginNotFound:
		return ErrPluginNotFound
	case CategoryTimeout:
		return ErrTimeout
	case CategoryDuplicateRecord:
		return ErrDuplicateRecord
	case CategoryProcess:
		return ErrProcess
	case CategoryIO:
		return ErrIO
	default:
		return nil
	}
}

// ClassifiedError wraps an error with classification metadata.
// It provides category, retryability status, and the wrapped cause.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Retryable indicates whether the error is transient and can be retried.
	Retryable bool

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// Is reports whether target is the sentinel for this error's category,
// making errors.Is(err, errhandling.ErrTimeout) work on classified errors.
func (e *ClassifiedError) Is(target error) bool {
	return target != nil && target == sentinelFor(e.Category)
}

// NewConfigurationError creates a ClassifiedError for configuration errors.
func NewConfigurationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryConfiguration,
		Retryable:   false,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewPluginNotFoundError creates a ClassifiedError for an unknown plugin name.
func NewPluginNotFoundError(kind, name string) *ClassifiedError {
	return &ClassifiedError{
		Category:  CategoryPluginNotFound,
		Retryable: false,
		Message:   fmt.Sprintf("unknown %s plugin: %q", kind, name),
	}
}

// NewTimeoutError creates a ClassifiedError for exhausted time budgets.
func NewTimeoutError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryTimeout,
		Retryable:   true,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewDuplicateRecordError creates a ClassifiedError for a repeated record name.
func NewDuplicateRecordError(name string) *ClassifiedError {
	return &ClassifiedError{
		Category:  CategoryDuplicateRecord,
		Retryable: false,
		Message:   fmt.Sprintf("duplicate record name: %q", name),
	}
}

// NewProcessError creates a ClassifiedError for a per-record filter failure,
// carrying the filter name and record identity for diagnosis.
func NewProcessError(filterName, recordID string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryProcess,
		Retryable:   false,
		Message:     fmt.Sprintf("filter %q failed on record %s: %v", filterName, recordID, originalErr),
		OriginalErr: originalErr,
	}
}

// NewIOError creates a ClassifiedError for file-system failures.
func NewIOError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Retryable:   true,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// ClassifyError classifies any error into a ClassifiedError.
// Already classified errors pass through; context deadline errors become
// timeouts; everything else is CategoryUnknown and not retried.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{
			Category:  CategoryUnknown,
			Retryable: false,
			Message:   "nil error",
		}
	}

	// Check if already classified
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("deadline exceeded", err)
	}

	// Context canceled is user initiated, never retried.
	if errors.Is(err, context.Canceled) {
		return &ClassifiedError{
			Category:    CategoryUnknown,
			Retryable:   false,
			Message:     "context canceled",
			OriginalErr: err,
		}
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Retryable:   false,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// IsRetryable returns true if the error is classified as retryable.
// Nil errors return false.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Retryable
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	return ClassifyError(err).Retryable
}

// IsFatal returns true if the error must stop the run before or instead of
// any retry. Fatal categories: Configuration, PluginNotFound, DuplicateRecord,
// Process.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	switch GetErrorCategory(err) {
	case CategoryConfiguration, CategoryPluginNotFound, CategoryDuplicateRecord, CategoryProcess:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the error category for a given error.
// Returns CategoryUnknown for nil or unclassified errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}

	return CategoryUnknown
}
