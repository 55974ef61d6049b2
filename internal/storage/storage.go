// Package storage provides object storage abstractions for model artifacts
// and saved analysis results.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrPutFailed      = errors.New("put failed")
	ErrGetFailed      = errors.New("get failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts blob storage for persisted artifacts.
// Implementations include S3 and the local filesystem.
type ObjectStorage interface {
	// Put writes data to the given object path, replacing any existing
	// object. Artifacts are replace-on-retrain; no locking is provided.
	Put(ctx context.Context, objectPath string, data []byte) error

	// Get reads the object at the given path. Returns ErrObjectNotFound
	// when the object does not exist.
	Get(ctx context.Context, objectPath string) ([]byte, error)

	// Exists checks whether an object exists.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// Delete removes an object. Deleting an absent object is not an error.
	Delete(ctx context.Context, objectPath string) error

	// List returns all object paths under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
