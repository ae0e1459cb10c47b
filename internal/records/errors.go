package records

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across store implementations.
var (
	// ErrNotFound indicates a record does not exist within the caller's scope.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates an insert hit the (tenant, external key)
	// uniqueness constraint. Idempotent ingestion treats it as success-with-skip.
	ErrDuplicateKey = errors.New("duplicate external key")
)

// ValidationError reports caller input that can never succeed as given:
// missing required fields, malformed dates, disallowed source domains.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuthorizationError reports a role or tenant-ownership violation. It is
// surfaced distinctly from ErrNotFound; cross-tenant access always maps here.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// NewAuthorizationError builds an AuthorizationError.
func NewAuthorizationError(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// ConflictError reports a state-machine transition attempted from a
// non-pending state. Callers must re-fetch and inspect the current state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NewConflictError builds a ConflictError.
func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
