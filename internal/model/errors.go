package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record matches an identifier.
var ErrNotFound = errors.New("simulation not found")

// ErrDuplicateID is returned by Save when a record with the same identifier
// already exists. It is not a StorageError, so it is never retried as-is.
var ErrDuplicateID = errors.New("simulation id already exists")

// ValidationError reports a violated input constraint. Its message is safe
// to show to callers.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ComputationError reports numerically degenerate inputs that reached the
// math layer.
type ComputationError struct {
	Op     string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// StorageError wraps an I/O failure in a result store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsComputation reports whether err carries a *ComputationError.
func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}

// IsStorage reports whether err carries a *StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
