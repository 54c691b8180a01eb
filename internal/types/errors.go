package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	// ErrNotFound indicates a required entity (guide, chemin-de-fer, page,
	// template) does not exist. Fatal for the operation that needed it.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID indicates a malformed identifier was passed to a lookup.
	ErrInvalidID = errors.New("invalid identifier")
)

// NotFoundf wraps ErrNotFound with an entity-identifying message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}
