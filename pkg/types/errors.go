package types

import "errors"

// Schema-related errors
var (
	// ErrUnknownKind is returned when a column kind name or value is not a
	// member of the Kind enum
	ErrUnknownKind = errors.New("unknown column kind")

	// ErrColumnNotFound is returned when a schema lookup references a column
	// that is not declared
	ErrColumnNotFound = errors.New("column not found in schema")
)
