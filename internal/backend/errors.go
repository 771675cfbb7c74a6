package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the backend reports 404 for a resource
	// or booking id.
	ErrNotFound = errors.New("not found")

	// ErrGroupCreateUnsupported is returned when the backend does not
	// implement atomic recurring group creation and the caller should fall
	// back to per-occurrence creates.
	ErrGroupCreateUnsupported = errors.New("recurring group create not supported")
)

// ValidationError is a booking rejected by the backend, e.g. the slot was
// taken between grid render and submit. Actionable by the user, never retried
// automatically.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// ConflictError is a state transition the backend refused, e.g. cancelling a
// booking already in a terminal state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Message
}

// NetworkError wraps transport-level failures so callers can distinguish
// them from backend rejections.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
