package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidUUID  = errors.New("invalid uuid")
	ErrInvalidOrder = errors.New("invalid order")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("persistence failure")
	// ErrConflict marks a request whose idempotency key is held by another
	// in-flight request or was first used with a different payload.
	ErrConflict     = errors.New("idempotency conflict")
)

// Violation names one field that failed validation.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violation found in one input. Kind is the
// sentinel it matches with errors.Is (ErrInvalidOrder or ErrInvalidInput).
type ValidationError struct {
	Kind       error
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Reason
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == e.Kind
}

// InvalidOrder builds the rejection returned before any persistence attempt.
func InvalidOrder(violations ...Violation) *ValidationError {
	return &ValidationError{Kind: ErrInvalidOrder, Violations: violations}
}

// InvalidInput builds the rejection for customer and product payloads.
func InvalidInput(violations ...Violation) *ValidationError {
	return &ValidationError{Kind: ErrInvalidInput, Violations: violations}
}

// PersistenceReason distinguishes storage failures.
type PersistenceReason string

const (
	ReasonIntegrity   PersistenceReason = "integrity"
	ReasonUnavailable PersistenceReason = "unavailable"
	ReasonUnknown     PersistenceReason = "unknown"
)

type PersistenceError struct {
	Op     string
	Reason PersistenceReason
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence.%s [%s]: %v", e.Op, e.Reason, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsIntegrityViolation reports whether err is a constraint violation raised by
// the storage layer.
func IsIntegrityViolation(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Reason == ReasonIntegrity
}
