package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized aborts execution before any workflow logic runs.
	ErrUnauthorized = errors.New("unauthorized: no authenticated user")

	// ErrConflict means another request holds the key.
	ErrConflict = errors.New("idempotency conflict")

	// ErrKeyTaken is returned by Store.Reserve when a live reservation exists.
	ErrKeyTaken = errors.New("idempotency key already reserved")
)

// Kind classifies a failed result for callers that map outcomes to transport codes.
type Kind string

const (
	KindConflict    Kind = "conflict"
	KindValidation  Kind = "validation"
	KindProvider    Kind = "provider"
	KindPersistence Kind = "persistence"
)

// ValidationError carries a user-facing reason for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a billing provider failure.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError is a store failure. ScheduleID is set when the provider resource
// already exists and has to be reconciled by hand.
type PersistenceError struct {
	ScheduleID string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.ScheduleID != "" {
		return fmt.Sprintf("subscription schedule %s was created but could not be recorded: %v", e.ScheduleID, e.Err)
	}
	return fmt.Sprintf("store failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// KindOf classifies err; ok is false for errors outside the workflow taxonomy.
func KindOf(err error) (Kind, bool) {
	var (
		ve *ValidationError
		pe *ProviderError
		se *PersistenceError
	)
	switch {
	case errors.Is(err, ErrConflict):
		return KindConflict, true
	case errors.As(err, &ve):
		return KindValidation, true
	case errors.As(err, &pe):
		return KindProvider, true
	case errors.As(err, &se):
		return KindPersistence, true
	}
	return "", false
}
