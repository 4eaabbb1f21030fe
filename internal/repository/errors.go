// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service to distinguish between different failure
// scenarios without inspecting SQL errors directly.
package repository

import "errors"

// ErrTicketNotFound indicates that no ticket row exists for the given ID.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrReservationNotFound indicates that no reservation row exists for the
// given ID, or no seat with the given number exists for the ticket.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound indicates that no user row exists for the given ID.
var ErrUserNotFound = errors.New("user not found")

// ErrRequestNotFound indicates that no change request exists for the
// given ID.
var ErrRequestNotFound = errors.New("request not found")

// ErrNoEffect is returned when a write that should have affected exactly
// one row affected zero. Inside a locked transaction this is a bug
// signal, not a recoverable condition: the transaction is aborted and the
// error propagated as-is.
var ErrNoEffect = errors.New("write affected no rows")
