// Package errors provides structured error types for the supply-chain
// analytics service. All errors include a category, code, message, and
// retryable flag for consistent handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline stage.
type ErrorCategory string

const (
	ErrCategoryIngest   ErrorCategory = "INGEST"
	ErrCategorySchema   ErrorCategory = "SCHEMA"
	ErrCategoryQuality  ErrorCategory = "QUALITY"
	ErrCategoryStore    ErrorCategory = "STORE"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryGraph    ErrorCategory = "GRAPH"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Ingest codes
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeParseError        = "PARSE_ERROR"
	CodeUnknownCategory   = "UNKNOWN_CATEGORY"

	// Schema codes
	CodeSchemaInvalid = "SCHEMA_INVALID"

	// Store codes
	CodeStoreError     = "STORE_ERROR"
	CodeNoActiveRecord = "NO_ACTIVE_RECORD"
	CodeQueryRejected  = "QUERY_REJECTED"

	// Storage codes
	CodeWriteFailed    = "WRITE_FAILED"
	CodeReadFailed     = "READ_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Graph codes
	CodeGraphSyncFailed = "GRAPH_SYNC_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// PipelineError is the structured error type used throughout the service.
type PipelineError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PipelineError.
func New(category ErrorCategory, code, message string) *PipelineError {
	return &PipelineError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new PipelineError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PipelineError {
	return &PipelineError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *PipelineError) WithDetails(details map[string]interface{}) *PipelineError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCategory(err error) ErrorCategory {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// isRetryable determines if an error code describes a transient failure.
// Graph sync failures are retryable but never block an upload.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeWriteFailed:
		return true
	case category == ErrCategoryStorage && code == CodeReadFailed:
		return true
	case category == ErrCategoryGraph && code == CodeGraphSyncFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewIngestError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryIngest, code, message, cause)
}

func NewSchemaError(message string) *PipelineError {
	return New(ErrCategorySchema, CodeSchemaInvalid, message)
}

func NewStoreError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryStore, code, message, cause)
}

func NewStorageError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewGraphError(message string, cause error) *PipelineError {
	return Wrap(ErrCategoryGraph, CodeGraphSyncFailed, message, cause)
}

func NewInternalError(message string, cause error) *PipelineError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
