package service

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Handlers map these to HTTP statuses; everything not
// matched here is treated as a persistence failure and reported generically.

// ValidationError rejects an operation before any write. Zero side effects.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the product that lacked stock so the caller
// can report which precondition failed, not a generic failure.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q", e.Product)
}

// StateConflictError covers lifecycle violations: register already open,
// register already closed, sale already cancelled.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// IsValidation reports whether err is a pre-write rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInsufficientStock reports whether err is a stock shortage.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// IsStateConflict reports whether err is a lifecycle conflict.
func IsStateConflict(err error) bool {
	var sce *StateConflictError
	return errors.As(err, &sce)
}
