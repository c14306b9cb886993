package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_status_transition")
)

// StateError reports a rejected invoice transition. errors.Is matches it
// against ErrInvalidTransition so callers can map it without losing the
// from/to detail.
type StateError struct {
	From InvoiceStatus
	To   InvoiceStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invoice cannot move from %s to %s", e.From, e.To)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewStateError builds the rejection for an attempted from/to move.
func NewStateError(from, to InvoiceStatus) error {
	return &StateError{From: from, To: to}
}
