package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentifier is matched by *MissingIdentifierError.
	ErrMissingIdentifier = errors.New("identity: missing or invalid identifier")

	// ErrIdentityConflict is matched by *IdentityConflictError.
	ErrIdentityConflict = errors.New("identity: two instances claim the same identifier")

	// ErrNilInstance is returned when a nil instance is registered.
	ErrNilInstance = errors.New("identity: nil instance")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("identity: invalid config")
)

// MissingIdentifierError reports a record without a usable identity value.
type MissingIdentifierError struct {
	Key      string
	Expected string
	Got      string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("identity: missing or invalid value for %q: expected %s, got %s", e.Key, e.Expected, e.Got)
}

func (e *MissingIdentifierError) Is(target error) bool {
	return target == ErrMissingIdentifier
}

// IdentityConflictError reports two distinct live instances sharing one ID
// within the same pool. It is a programming error in the caller.
type IdentityConflictError struct {
	ID       ID
	Existing Model
	Incoming Model
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("identity: conflicting instances for id %s (existing %T, incoming %T)", e.ID.Hex(), e.Existing, e.Incoming)
}

func (e *IdentityConflictError) Is(target error) bool {
	return target == ErrIdentityConflict
}
