package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks operations that target a nonexistent order or table.
var ErrNotFound = errors.New("not found")

// ValidationError is returned for malformed input detected before any
// persistence call (empty item list, weekly recurrence without weekdays, ...).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError is returned for an illegal order status change.
type InvalidTransitionError struct {
	From, To OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// RepositoryError wraps an underlying store failure; the cause is opaque
// to callers beyond unwrapping.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string { return "repository: " + e.Op + ": " + e.Err.Error() }
func (e *RepositoryError) Unwrap() error { return e.Err }

func WrapRepo(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}
