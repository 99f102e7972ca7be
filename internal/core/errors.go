package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced record does not exist or is
// soft-deleted. Wrapped with context by each service.
var ErrNotFound = errors.New("record not found")

// ErrCodeContention is returned when the code-sequence generator could not
// acquire its row within the lock timeout, or lost a serialization conflict.
// The operation is safe to retry.
var ErrCodeContention = errors.New("code sequence busy, retry")

// ValidationError is a user-correctable input problem. The message is safe to
// show to the caller as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// OverReceiptError blocks a reception that would push the cumulative received
// quantity for a line item past its ordered quantity. All counts are carried
// so the caller can render a precise message.
type OverReceiptError struct {
	SKU             string
	Ordered         int
	AlreadyReceived int
	Attempted       int
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf(
		"over-receipt for %s: ordered: %d, already received: %d, attempting: %d, total: %d",
		e.SKU, e.Ordered, e.AlreadyReceived, e.Attempted, e.AlreadyReceived+e.Attempted,
	)
}
