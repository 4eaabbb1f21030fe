package service

import (
	"errors"
	"fmt"
)

// Conflict reason codes. Each user-facing conflict carries one of these
// stable codes so clients can tell retryable outcomes (another seat may
// be free) from final ones (the trip already departed) without parsing
// messages.
const (
	ReasonTicketInactive   = "ticket_inactive"
	ReasonDeparturePassed  = "departure_passed"
	ReasonNoCapacity       = "no_capacity"
	ReasonSeatUnavailable  = "seat_unavailable"
	ReasonHoldNotFound     = "hold_not_found"
	ReasonNotTemporary     = "not_temporary"
	ReasonNotReserved      = "not_reserved"
	ReasonForbidden        = "forbidden"
	ReasonRequestProcessed = "request_processed"
)

// ConflictError reports that an operation found the wrong state for the
// requested transition. Conflicts detected inside a locked transaction
// roll the transaction back cleanly; nothing is partially committed.
type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict (%s): %s", e.Reason, e.Message)
}

func conflict(reason, format string, args ...interface{}) error {
	return &ConflictError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsConflict unwraps err into a ConflictError, or returns nil when err
// is not a conflict.
func AsConflict(err error) *ConflictError {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// ErrValidation marks malformed input, rejected before any lock is
// taken. Handlers translate it to 400.
var ErrValidation = errors.New("validation failed")

func validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
