package identity

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConflictPolicy decides what Register does when a different live instance
// is already pooled under the same ID.
type ConflictPolicy string

const (
	// ConflictReject returns an *IdentityConflictError and leaves the pool untouched.
	ConflictReject ConflictPolicy = "reject"
	// ConflictKeepExisting logs a warning, keeps the pooled instance and returns nil.
	ConflictKeepExisting ConflictPolicy = "keep_existing"
)

// Config holds the pool settings.
type Config struct {
	// PinCapacity is the number of most recently pooled instances kept
	// strongly reachable. Zero disables pinning.
	PinCapacity int

	// IDField is the record field that holds the identifier. Default: "_id"
	IDField string

	// ConflictPolicy defaults to ConflictReject.
	ConflictPolicy ConflictPolicy
}

// DefaultConfig returns a Config with pinning disabled, the "_id" field and
// the reject conflict policy.
func DefaultConfig() Config {
	return Config{
		PinCapacity:    0,
		IDField:        DefaultIDField,
		ConflictPolicy: ConflictReject,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.PinCapacity, validation.Min(0)),
		validation.Field(&c.IDField, validation.Required),
		validation.Field(&c.ConflictPolicy, validation.Required, validation.In(ConflictReject, ConflictKeepExisting)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
