package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrNotAssignable means the booking gained a provider or left the pending
	// state between planning and execution.
	ErrNotAssignable = errors.New("booking is no longer unassigned and pending")
)
