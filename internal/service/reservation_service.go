// Package service implements the reservation state machine: seat holds,
// payment settlement, expiry reverts and cancellations. All shared state
// lives in the relational store and is mutated only inside TxRunner
// transactions under row locks taken in a fixed global order (ticket →
// reservation → wallet, with the request row first when one is
// involved). The hold cache and expiry scheduler are populated strictly
// after commit and are never treated as sources of truth.
package service

import (
	"context"
	"log"
	"time"

	"github.com/ahmdrza1383/db-project/internal/cache"
	"github.com/ahmdrza1383/db-project/internal/clock"
	"github.com/ahmdrza1383/db-project/internal/model"
	"github.com/ahmdrza1383/db-project/internal/repository"
)

// TxRunner executes a unit of work inside one transaction with
// post-commit hook support.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TicketStore is the capacity ledger.
type TicketStore interface {
	Get(ctx context.Context, id uint64) (*model.Ticket, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Ticket, error)
	AdjustRemaining(ctx context.Context, id uint64, delta int) error
	Create(ctx context.Context, t *model.Ticket) error
}

// ReservationStore is the per-seat reservation record.
type ReservationStore interface {
	TicketIDOf(ctx context.Context, reservationID uint64) (uint64, error)
	Get(ctx context.Context, id uint64) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Reservation, error)
	GetBySeatForUpdate(ctx context.Context, ticketID uint64, seatNumber uint32) (*model.Reservation, error)
	MarkTemporary(ctx context.Context, id, userID uint64, heldAt time.Time) error
	MarkReserved(ctx context.Context, id uint64, paidAt time.Time) error
	Release(ctx context.Context, id uint64) error
	CreateSeats(ctx context.Context, ticketID uint64, count int) error
	ListByTicket(ctx context.Context, ticketID uint64) ([]model.Reservation, error)
}

// WalletStore is the buyer's account and wallet row.
type WalletStore interface {
	Get(ctx context.Context, userID uint64) (*model.User, error)
	BalanceForUpdate(ctx context.Context, userID uint64) (int64, error)
	ApplyWalletDelta(ctx context.Context, userID uint64, delta int64) error
}

// PaymentStore appends and lists settlement-attempt audit rows.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error)
}

// HistoryStore appends BUY/CANCEL audit rows.
type HistoryStore interface {
	Append(ctx context.Context, h *model.HistoryEntry) error
}

// RequestStore is the moderation queue for cancel/change requests.
type RequestStore interface {
	Create(ctx context.Context, req *model.ChangeRequest) error
	GetForUpdate(ctx context.Context, id uint64) (*model.ChangeRequest, error)
	MarkChecked(ctx context.Context, id, adminID uint64, accepted bool) error
}

// HoldCache is the TTL mirror of in-flight holds.
type HoldCache interface {
	Put(ctx context.Context, snap cache.HoldSnapshot, ttl time.Duration) error
	Get(ctx context.Context, reservationID uint64) (*cache.HoldSnapshot, error)
	Delete(ctx context.Context, reservationID uint64) error
}

// TicketCache is the TTL mirror of ticket detail documents.
type TicketCache interface {
	Get(ctx context.Context, ticketID uint64) (*cache.TicketDetails, error)
	Put(ctx context.Context, det cache.TicketDetails) error
	PatchRemaining(ctx context.Context, ticketID uint64, remaining int) error
	Invalidate(ctx context.Context, ticketID uint64) error
}

// ExpiryScheduler arms the compensating revert task for a hold.
type ExpiryScheduler interface {
	Schedule(ctx context.Context, reservationID uint64, delay time.Duration) error
}

// CapacityIndexer mirrors capacity changes into the search collaborator.
type CapacityIndexer interface {
	UpdateRemaining(ctx context.Context, ticketID uint64, remaining int) error
}

// ReservationService drives every reservation lifecycle transition. All
// dependencies are injected; the service holds no connections of its own
// and no mutable state.
type ReservationService struct {
	tx       TxRunner
	tickets  TicketStore
	seats    ReservationStore
	wallets  WalletStore
	payments PaymentStore
	history  HistoryStore
	requests RequestStore
	holds    HoldCache
	details  TicketCache
	expiry   ExpiryScheduler
	indexer  CapacityIndexer
	clock    clock.Clock
	grace    time.Duration
}

// Deps bundles the constructor dependencies of ReservationService.
// Details and Indexer may be nil (disabled); everything else is required.
type Deps struct {
	Tx       TxRunner
	Tickets  TicketStore
	Seats    ReservationStore
	Wallets  WalletStore
	Payments PaymentStore
	History  HistoryStore
	Requests RequestStore
	Holds    HoldCache
	Details  TicketCache
	Expiry   ExpiryScheduler
	Indexer  CapacityIndexer
	Clock    clock.Clock
	Grace    time.Duration
}

// NewReservationService constructs the service and panics on a missing
// required dependency, matching how handlers guard their repositories.
func NewReservationService(d Deps) *ReservationService {
	if d.Tx == nil || d.Tickets == nil || d.Seats == nil || d.Wallets == nil ||
		d.Payments == nil || d.History == nil || d.Requests == nil ||
		d.Holds == nil || d.Expiry == nil || d.Clock == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if d.Grace <= 0 {
		d.Grace = 10 * time.Minute
	}
	return &ReservationService{
		tx:       d.Tx,
		tickets:  d.Tickets,
		seats:    d.Seats,
		wallets:  d.Wallets,
		payments: d.Payments,
		history:  d.History,
		requests: d.Requests,
		holds:    d.Holds,
		details:  d.Details,
		expiry:   d.Expiry,
		indexer:  d.Indexer,
		clock:    d.Clock,
		grace:    d.Grace,
	}
}

// Grace returns the configured hold grace period.
func (s *ReservationService) Grace() time.Duration { return s.grace }

// publishCapacity registers the best-effort post-commit side effects of
// a capacity change: patching the cached ticket document and updating
// the search index. Failures are logged and go nowhere else.
func (s *ReservationService) publishCapacity(ctx context.Context, ticketID uint64, remaining int) {
	repository.AfterCommit(ctx, func() {
		if s.details != nil {
			if err := s.details.PatchRemaining(context.Background(), ticketID, remaining); err != nil {
				log.Printf("reservation: ticket cache patch failed for ticket %d: %v", ticketID, err)
			}
		}
		if s.indexer != nil {
			if err := s.indexer.UpdateRemaining(context.Background(), ticketID, remaining); err != nil {
				log.Printf("reservation: search index update failed for ticket %d: %v", ticketID, err)
			}
		}
	})
}

// HoldResult describes a freshly-created temporary hold.
type HoldResult struct {
	ReservationID uint64    `json:"reservation_id"`
	TicketID      uint64    `json:"ticket_id"`
	SeatNumber    uint32    `json:"seat_number"`
	Price         int64     `json:"ticket_price"`
	HeldAt        time.Time `json:"reserved_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// HoldSeat claims one seat of a ticket for a user, NOT_RESERVED →
// TEMPORARY, decrementing the capacity ledger in the same transaction.
// Preconditions are checked under the ticket and seat row locks, in
// order, and each failure maps to its own conflict reason so callers can
// tell a full trip from a taken seat. The cache write and the expiry
// task are armed only after the transaction commits.
func (s *ReservationService) HoldSeat(ctx context.Context, ticketID uint64, seatNumber uint32, userID uint64) (*HoldResult, error) {
	if ticketID == 0 || seatNumber == 0 || userID == 0 {
		return nil, validation("ticket id, seat number and user id must be positive")
	}
	now := s.clock.Now()
	var result *HoldResult
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != model.TicketStatusActive {
			return conflict(ReasonTicketInactive, "ticket %d is not open for sale", ticketID)
		}
		if !ticket.DepartureStart.After(now) {
			return conflict(ReasonDeparturePassed, "ticket %d has already departed", ticketID)
		}
		if ticket.RemainingCapacity < 1 {
			return conflict(ReasonNoCapacity, "ticket %d is sold out", ticketID)
		}
		seat, err := s.seats.GetBySeatForUpdate(ctx, ticketID, seatNumber)
		if err != nil {
			return err
		}
		if seat.Status != model.StatusNotReserved || seat.UserID != nil {
			return conflict(ReasonSeatUnavailable, "seat %d of ticket %d is not available", seatNumber, ticketID)
		}
		if err := s.seats.MarkTemporary(ctx, seat.ID, userID, now); err != nil {
			return err
		}
		if err := s.tickets.AdjustRemaining(ctx, ticketID, -1); err != nil {
			return err
		}
		result = &HoldResult{
			ReservationID: seat.ID,
			TicketID:      ticketID,
			SeatNumber:    seatNumber,
			Price:         ticket.Price,
			HeldAt:        now,
			ExpiresAt:     now.Add(s.grace),
		}
		s.publishCapacity(ctx, ticketID, ticket.RemainingCapacity-1)

		// Cache write and task scheduling must not observe a transaction
		// that may still roll back.
		snap := cache.HoldSnapshot{
			ReservationID:  seat.ID,
			TicketID:       ticketID,
			SeatNumber:     seatNumber,
			UserID:         userID,
			HeldAt:         now,
			Price:          ticket.Price,
			DepartureStart: ticket.DepartureStart,
			GraceMinutes:   int(s.grace / time.Minute),
		}
		repository.AfterCommit(ctx, func() {
			// A failed cache write is deliberately not retried: the next
			// payment attempt sees a cache miss and rejects, forcing a
			// re-hold. Rejecting a valid payment is the accepted cost of
			// never approving from the cache alone.
			if err := s.holds.Put(context.Background(), snap, s.grace); err != nil {
				log.Printf("reservation: hold cache write failed for reservation %d: %v", snap.ReservationID, err)
			}
			if err := s.expiry.Schedule(context.Background(), snap.ReservationID, s.grace); err != nil {
				log.Printf("reservation: expiry scheduling failed for reservation %d: %v", snap.ReservationID, err)
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PaymentInput carries a settlement attempt. AssertedOutcome must be
// empty for WALLET (the service decides from the balance) and must be
// SUCCESSFUL or UNSUCCESSFUL for the externally-settled methods.
type PaymentInput struct {
	ReservationID   uint64
	UserID          uint64
	Method          string
	AssertedOutcome string
}

// PaymentResult reports one settlement attempt. Outcome is recorded even
// when unsuccessful; NewBalance is set for wallet payments only.
type PaymentResult struct {
	PaymentID     uint64    `json:"payment_id"`
	ReservationID uint64    `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	Outcome       string    `json:"outcome"`
	Method        string    `json:"method"`
	PaidAt        time.Time `json:"paid_at"`
	NewBalance    *int64    `json:"new_wallet_balance,omitempty"`
}

// Pay settles a temporary hold. The hold cache is consulted first,
// without any lock: an absent entry rejects the attempt before lock
// contention, which is the primary defense against paying for a hold the
// expiry task has already reverted. The authoritative status is then
// re-checked under the reservation and wallet row locks, the price is
// taken from the cached snapshot (pinned at hold time), and a payment
// record plus BUY history entry are written whatever the outcome. Only a
// successful outcome debits the wallet, promotes the seat to RESERVED and
// deletes the cache entry (after commit). A failed attempt changes
// nothing and may be retried until the grace period ends.
func (s *ReservationService) Pay(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	switch in.Method {
	case model.MethodWallet:
		if in.AssertedOutcome != "" {
			return nil, validation("payment outcome cannot be supplied for wallet payments")
		}
	case model.MethodCreditCard, model.MethodCrypto:
		if in.AssertedOutcome != model.OutcomeSuccessful && in.AssertedOutcome != model.OutcomeUnsuccessful {
			return nil, validation("payment outcome is required for %s payments", in.Method)
		}
	default:
		return nil, validation("unknown payment method %q", in.Method)
	}
	if in.ReservationID == 0 || in.UserID == 0 {
		return nil, validation("reservation id and user id must be positive")
	}

	snap, err := s.holds.Get(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, conflict(ReasonHoldNotFound, "no active hold for reservation %d; it may have expired", in.ReservationID)
	}
	if snap.UserID != in.UserID {
		return nil, conflict(ReasonForbidden, "reservation %d is held by another user", in.ReservationID)
	}
	now := s.clock.Now()
	if !snap.DepartureStart.After(now) {
		return nil, conflict(ReasonDeparturePassed, "ticket %d has already departed", snap.TicketID)
	}

	var result *PaymentResult
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := s.seats.GetForUpdate(ctx, in.ReservationID)
		if err != nil {
			return err
		}
		// Re-validation under lock: the cache said TEMPORARY a moment
		// ago, but the expiry task or a previous payment may have won the
		// lock race in between.
		if seat.Status != model.StatusTemporary {
			return conflict(ReasonNotTemporary, "reservation %d is %s; only temporary holds can be paid", seat.ID, seat.Status)
		}
		if !seat.HeldBy(in.UserID) {
			return conflict(ReasonForbidden, "reservation %d is held by another user", seat.ID)
		}

		successful := false
		var newBalance *int64
		if in.Method == model.MethodWallet {
			balance, err := s.wallets.BalanceForUpdate(ctx, in.UserID)
			if err != nil {
				return err
			}
			if balance >= snap.Price {
				successful = true
				b := balance - snap.Price
				newBalance = &b
			} else {
				newBalance = &balance
			}
		} else {
			successful = in.AssertedOutcome == model.OutcomeSuccessful
		}

		outcome := model.OutcomeUnsuccessful
		if successful {
			outcome = model.OutcomeSuccessful
		}
		payment := &model.Payment{
			ReservationID: seat.ID,
			UserID:        in.UserID,
			Amount:        snap.Price,
			Outcome:       outcome,
			Method:        in.Method,
			PaidAt:        now,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := s.history.Append(ctx, &model.HistoryEntry{
			ReservationID: seat.ID,
			UserID:        in.UserID,
			Operation:     model.OperationBuy,
			Outcome:       outcome,
			OccurredAt:    now,
		}); err != nil {
			return err
		}

		if successful {
			if in.Method == model.MethodWallet {
				if err := s.wallets.ApplyWalletDelta(ctx, in.UserID, -snap.Price); err != nil {
					return err
				}
			}
			if err := s.seats.MarkReserved(ctx, seat.ID, now); err != nil {
				return err
			}
			reservationID := seat.ID
			ticketID := snap.TicketID
			repository.AfterCommit(ctx, func() {
				if err := s.holds.Delete(context.Background(), reservationID); err != nil {
					log.Printf("reservation: hold cache delete failed for reservation %d: %v", reservationID, err)
				}
				// Paying flips a seat status without touching capacity,
				// which PatchRemaining cannot express. Drop the document
				// and let the next read rebuild it.
				if s.details != nil {
					if err := s.details.Invalidate(context.Background(), ticketID); err != nil {
						log.Printf("reservation: ticket cache invalidate failed for ticket %d: %v", ticketID, err)
					}
				}
			})
		}

		result = &PaymentResult{
			PaymentID:     payment.ID,
			ReservationID: seat.ID,
			Amount:        snap.Price,
			Outcome:       outcome,
			Method:        in.Method,
			PaidAt:        now,
			NewBalance:    newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// holdAgeSlack compensates for scheduler delivery jitter: a task that
// fires a few seconds early must still revert, matching the original
// operational behavior of the expiry job.
const holdAgeSlack = 10 * time.Second

// ExpireHold reverts an abandoned hold, TEMPORARY → NOT_RESERVED,
// returning the seat to the capacity ledger. It is scheduled
// unconditionally at hold time and delivered at-least-once, so it
// re-validates everything under lock before acting: a reservation that
// is no longer TEMPORARY (paid, or already reverted by a duplicate
// delivery) is a clean no-op. Only transient infrastructure errors
// propagate; the worker retries those with bounded backoff.
func (s *ReservationService) ExpireHold(ctx context.Context, reservationID uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticketID, err := s.seats.TicketIDOf(ctx, reservationID)
		if err != nil {
			return err
		}
		ticket, err := s.tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		seat, err := s.seats.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if seat.Status != model.StatusTemporary {
			// Already paid or already reverted.
			return nil
		}
		now := s.clock.Now()
		if seat.HeldAt != nil && now.Sub(*seat.HeldAt) < s.grace-holdAgeSlack {
			log.Printf("reservation: hold %d not yet expired, skipping revert", reservationID)
			return nil
		}
		if err := s.seats.Release(ctx, reservationID); err != nil {
			return err
		}
		if err := s.tickets.AdjustRemaining(ctx, ticketID, 1); err != nil {
			return err
		}
		s.publishCapacity(ctx, ticketID, ticket.RemainingCapacity+1)
		repository.AfterCommit(ctx, func() {
			// The TTL would clear this soon anyway; deleting eagerly
			// keeps a reverted hold from passing the pre-lock check.
			if err := s.holds.Delete(context.Background(), reservationID); err != nil {
				log.Printf("reservation: hold cache delete failed for reservation %d: %v", reservationID, err)
			}
		})
		return nil
	})
}
