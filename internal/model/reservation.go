package model

import "time"

// Reservation statuses.  A seat moves NOT_RESERVED → TEMPORARY on hold,
// TEMPORARY → RESERVED on successful payment, and back to NOT_RESERVED on
// expiry revert or cancellation.  A failed payment is not a transition;
// the seat stays TEMPORARY until it is paid or reverted.
const (
	StatusNotReserved = "NOT_RESERVED"
	StatusTemporary   = "TEMPORARY"
	StatusReserved    = "RESERVED"
)

// Reservation is one seat slot of a ticket.  Rows are pre-created
// NOT_RESERVED when the ticket is created and are never deleted; the
// lifecycle is driven exclusively by the reservation service under row
// locks.  UserID is non-nil iff Status is TEMPORARY or RESERVED.
//
// Fields:
//  ID         – primary key identifier.
//  TicketID   – ticket this seat belongs to.
//  SeatNumber – seat position, unique per ticket.
//  Status     – NOT_RESERVED, TEMPORARY or RESERVED.
//  UserID     – holder of the seat (nullable).
//  HeldAt     – instant the current hold was taken (nullable).
type Reservation struct {
	ID         uint64     // reservations.id
	TicketID   uint64     // reservations.ticket_id
	SeatNumber uint32     // reservations.seat_number
	Status     string     // reservations.status
	UserID     *uint64    // reservations.user_id (nullable)
	HeldAt     *time.Time // reservations.held_at (nullable)
}

// HeldBy reports whether the reservation is currently associated with the
// given user.  It is always false for NOT_RESERVED rows.
func (r *Reservation) HeldBy(userID uint64) bool {
	return r.UserID != nil && *r.UserID == userID
}
