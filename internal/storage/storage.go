// Package storage provides object storage for raw uploaded files.
// Accepted uploads land under the active prefix, rejected uploads are
// quarantined, and implementations cover the local filesystem and S3.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrWriteFailed    = errors.New("write failed")
	ErrReadFailed     = errors.New("read failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// Object path prefixes owned by the upload pipeline.
const (
	// ActivePrefix holds the raw bytes of accepted uploads.
	ActivePrefix = "uploads/active"

	// RejectedPrefix quarantines the raw bytes of uploads that
	// failed schema validation.
	RejectedPrefix = "uploads/rejected"
)

// ObjectStorage abstracts where raw upload bytes live.
// Implementations include S3 and the local filesystem.
type ObjectStorage interface {
	// Write stores data at objectPath, overwriting any existing object.
	Write(ctx context.Context, objectPath string, data []byte) error

	// Read returns the full content of the object at objectPath.
	// Returns ErrObjectNotFound when no such object exists.
	Read(ctx context.Context, objectPath string) ([]byte, error)

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// List returns all object paths under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an object from storage.
	Delete(ctx context.Context, objectPath string) error
}
