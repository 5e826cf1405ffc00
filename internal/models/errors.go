package models

import "errors"

// ErrAccountNotFound signals that the requested account id does not exist
// in the store. Handlers map it to 404.
var ErrAccountNotFound = errors.New("account not found")

// PolicyViolationError signals an operation that would break an account
// invariant: a treasury flag change, or a negative balance on a
// non-treasury account. Handlers map it to 400.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string { return e.Reason }

// NewPolicyViolation builds a PolicyViolationError with the given reason.
func NewPolicyViolation(reason string) *PolicyViolationError {
	return &PolicyViolationError{Reason: reason}
}
