package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist or is outside the
// caller's ward scope. Scope misses deliberately look identical to missing
// rows so existence is never leaked.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or out-of-range input. No state is
// mutated when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports an operation attempted from a state that
// does not permit it.
type InvalidTransitionError struct {
	Action string
	Status string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s request", e.Action, e.Status)
}

// IntegrityError reports a mutation blocked by existing dependents, such as
// deleting a ward that still has profiles assigned.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string {
	return e.Msg
}

// GatewayError wraps a payment-gateway failure. Order creation treats it as
// fatal; nothing local is persisted when one is returned.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
