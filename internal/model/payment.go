package model

import "time"

// Payment methods accepted at settlement time.  WALLET outcomes are
// decided by the service from the wallet balance; the other methods carry
// an externally-asserted outcome.
const (
	MethodWallet     = "WALLET"
	MethodCreditCard = "CREDIT_CARD"
	MethodCrypto     = "CRYPTOCURRENCY"
)

// Payment and history outcomes.
const (
	OutcomeSuccessful   = "SUCCESSFUL"
	OutcomeUnsuccessful = "UNSUCCESSFUL"
)

// History operations.
const (
	OperationBuy    = "BUY"
	OperationCancel = "CANCEL"
)

// Payment is one append-only row in the `payments` table.  A row is
// written for every settlement attempt, successful or not; rows are never
// updated.
type Payment struct {
	ID            uint64    // payments.id
	ReservationID uint64    // payments.reservation_id
	UserID        uint64    // payments.user_id
	Amount        int64     // payments.amount
	Outcome       string    // payments.outcome
	Method        string    // payments.method
	PaidAt        time.Time // payments.paid_at
}

// HistoryEntry is one append-only row in the `reservations_history`
// table.  BUY entries record settlement attempts; CANCEL entries record
// cancellations together with the actor who performed them (the holder or
// an admin).
type HistoryEntry struct {
	ID            uint64    // reservations_history.id
	ReservationID uint64    // reservations_history.reservation_id
	UserID        uint64    // reservations_history.user_id
	Operation     string    // reservations_history.operation
	Outcome       string    // reservations_history.outcome
	Actor         *uint64   // reservations_history.actor_id (nullable, CANCEL only)
	OccurredAt    time.Time // reservations_history.occurred_at
}
