package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrValidationExhausted means no acceptable value could be obtained for a field
	// and the operator cannot be asked again.
	ErrValidationExhausted = errors.New("no acceptable value supplied")
	// ErrTransactionRejected means the network refused to execute the transaction.
	ErrTransactionRejected = errors.New("transaction rejected by the network")
)

// ValidationError names the field that could not be resolved.
type ValidationError struct {
	Field string
	// Err is the last reason the supplied value was refused, or nil if nothing was supplied.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: no value supplied and running non-interactively", e.Field)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidationExhausted}
	}
	return []error{ErrValidationExhausted, e.Err}
}

// SigningError is fatal: the transaction could not be signed with the chosen method.
type SigningError struct {
	Method string
	Err    error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign with %s: %v", e.Method, e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
