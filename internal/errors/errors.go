// Package errors provides structured error types for the Loom system.
// All errors include a category, code, and message for consistent error
// handling and HTTP status mapping across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategorySchema     ErrorCategory = "SCHEMA"
	ErrCategoryPreprocess ErrorCategory = "PREPROCESS"
	ErrCategoryModel      ErrorCategory = "MODEL"
	ErrCategoryArtifact   ErrorCategory = "ARTIFACT"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Schema codes
	CodeSchemaViolation = "SCHEMA_VIOLATION"
	CodeEmptyDataset    = "EMPTY_DATASET"
	CodeInvalidSchema   = "INVALID_SCHEMA"

	// Preprocess codes
	CodeMissingColumns = "MISSING_COLUMNS"
	CodeParseFailure   = "PARSE_FAILURE"

	// Model codes
	CodeTrainingFailed  = "TRAINING_FAILED"
	CodeFeatureMismatch = "FEATURE_MISMATCH"

	// Artifact codes
	CodeArtifactMissing = "ARTIFACT_MISSING"
	CodeArtifactCorrupt = "ARTIFACT_CORRUPT"

	// Storage codes
	CodePutFailed      = "PUT_FAILED"
	CodeGetFailed      = "GET_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// LoomError is the structured error type used throughout the system.
type LoomError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *LoomError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *LoomError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *LoomError) Is(target error) bool {
	var t *LoomError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new LoomError.
func New(category ErrorCategory, code, message string) *LoomError {
	return &LoomError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new LoomError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *LoomError {
	return &LoomError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *LoomError) WithDetails(details map[string]interface{}) *LoomError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a LoomError.
func GetCategory(err error) ErrorCategory {
	var le *LoomError
	if errors.As(err, &le) {
		return le.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a LoomError.
func GetCode(err error) string {
	var le *LoomError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsClientError reports whether the error chain represents bad caller input
// (a schema violation) rather than a server-side failure.
func IsClientError(err error) bool {
	return GetCategory(err) == ErrCategorySchema
}

// Convenience constructors for common errors.

func NewSchemaError(code, message string) *LoomError {
	return New(ErrCategorySchema, code, message)
}

func NewPreprocessError(code, message string) *LoomError {
	return New(ErrCategoryPreprocess, code, message)
}

func NewModelError(code, message string, cause error) *LoomError {
	return Wrap(ErrCategoryModel, code, message, cause)
}

func NewArtifactError(code, message string, cause error) *LoomError {
	return Wrap(ErrCategoryArtifact, code, message, cause)
}

func NewStorageError(code, message string, cause error) *LoomError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *LoomError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
