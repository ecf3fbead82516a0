/*
errors.go - Centralized error types for the resource engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Contract violations - Unsupported call shapes, bad definitions.
     These abort the current simulation step.
  2. Lookup errors - Unknown resources or phases
  3. Journal errors - Transaction persistence failures

  Shortfalls are NOT errors. Removing more than a store holds is
  truncated and reported through Request.Provided.

USAGE:
  if errors.Is(err, generic.ErrResourceNotFound) {
      ...
  }

SEE ALSO:
  - ledger.go: ErrNotSupported
  - registry.go: ErrResourceNotFound, ErrDuplicateResource
  - store.go: ErrDuplicateTransaction
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotSupported is returned for operations a resource kind does not
	// implement, such as removing a bare value without a Request.
	ErrNotSupported = errors.New("operation not supported for this resource kind")

	// ErrResourceNotFound is returned when a referenced resource isn't registered.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrDuplicateResource is returned when registering a resource ID twice.
	ErrDuplicateResource = errors.New("resource already registered")

	// ErrDuplicateTransaction is returned when a journal already holds a
	// transaction with the same ID.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrInvalidDefinition is returned when a farm or resource definition
	// cannot be turned into a working model.
	ErrInvalidDefinition = errors.New("invalid definition")

	// ErrUnknownPhase is returned when a hook is registered for a phase the
	// scheduler does not run.
	ErrUnknownPhase = errors.New("unknown phase")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DefinitionError describes which field of a definition is wrong.
type DefinitionError struct {
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid definition: %s: %s", e.Field, e.Reason)
}

func (e *DefinitionError) Unwrap() error {
	return ErrInvalidDefinition
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// IsContractViolation returns true if the error should abort the step.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrNotSupported) ||
		errors.Is(err, ErrInvalidDefinition) ||
		errors.Is(err, ErrUnknownPhase)
}
