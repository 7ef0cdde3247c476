package core

import "errors"

// Sentinel errors for invariant violations. Workflow services wrap these
// with entity-specific context; callers branch with errors.Is.
var (
	// ErrInsufficientStock is returned when a sale or production order would
	// drive a stock quantity negative. The whole operation is aborted before
	// any write is issued.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrReturnExceedsDue is returned when a return's total value exceeds the
	// invoice's current due amount.
	ErrReturnExceedsDue = errors.New("return value exceeds invoice due amount")

	// ErrInvalidTransition is returned for a disallowed status transition
	// (cancelling a Paid invoice, receiving a Cancelled PO, ...).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
