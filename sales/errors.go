/*
errors.go - Centralized error types for the sales engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these to HTTP status codes without inspecting strings.

ERROR CATEGORIES:
  1. Validation errors - Bad commands, rejected before any store access
  2. Not-found errors  - Referenced sale/product/customer/category is absent
  3. Persistence errors - Underlying store unavailable or write rejected

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, sales.ErrNotFound) { ... }

    var nf *sales.NotFoundError
    if errors.As(err, &nf) { log.Print(nf.ID) }

SEE ALSO:
  - engine.go: Produces these errors
  - api/handlers.go: Maps them to HTTP responses
*/
package sales

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a command fails validation. The
	// operation was not attempted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the underlying store fails.
	// No automatic retry is performed.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing record. Kind is one of "sale", "product",
// "customer", "category".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError describes why a command was rejected.
type ValidationError struct {
	Code    string // e.g., "empty_items", "invalid_quantity"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PersistenceError wraps a store-level failure with the operation that failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return ErrPersistence
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}
