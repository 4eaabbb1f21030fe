package service

import (
	"context"
	"log"
	"time"

	"github.com/ahmdrza1383/db-project/internal/model"
	"github.com/ahmdrza1383/db-project/internal/repository"
)

// CancelResult reports a completed cancellation: the penalty breakdown
// and the wallet balance after the refund was credited.
type CancelResult struct {
	ReservationID uint64      `json:"reservation_id"`
	Quote         RefundQuote `json:"refund"`
	NewBalance    int64       `json:"new_wallet_balance"`
}

// PreviewCancel computes the penalty a user would pay for cancelling
// right now. It takes no locks and changes nothing; the numbers are
// advisory and recomputed under lock when the cancellation happens.
func (s *ReservationService) PreviewCancel(ctx context.Context, reservationID, userID uint64) (*RefundQuote, error) {
	seat, err := s.seats.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if seat.UserID == nil || *seat.UserID != userID {
		return nil, conflict(ReasonForbidden, "reservation %d does not belong to you", reservationID)
	}
	if seat.Status != model.StatusReserved {
		return nil, conflict(ReasonNotReserved, "reservation %d is %s; only paid reservations can be cancelled", reservationID, seat.Status)
	}
	ticket, err := s.tickets.Get(ctx, seat.TicketID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if !ticket.DepartureStart.After(now) {
		return nil, conflict(ReasonDeparturePassed, "ticket %d has already departed", ticket.ID)
	}
	quote := computeRefund(ticket.Price, ticket.DepartureStart, now)
	return &quote, nil
}

// Cancel reverts a paid reservation, RESERVED → NOT_RESERVED, credits
// the refund (price minus penalty) to the buyer's wallet and returns the
// seat to the capacity ledger, all in one transaction. The actor must be
// the owner or an admin, the trip must not have departed yet, and the
// penalty reference instant is the current time. An admin cancelling on
// a user's behalf is recorded as the actor in the history row while the
// refund still goes to the owner's wallet.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID uint64, actorRole string) (*CancelResult, error) {
	if reservationID == 0 || actorID == 0 {
		return nil, validation("reservation id and actor id must be positive")
	}
	now := s.clock.Now()
	var result *CancelResult
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticketID, err := s.seats.TicketIDOf(ctx, reservationID)
		if err != nil {
			return err
		}
		ticket, err := s.tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if !ticket.DepartureStart.After(now) {
			return conflict(ReasonDeparturePassed, "ticket %d has already departed", ticket.ID)
		}
		seat, err := s.seats.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if seat.Status != model.StatusReserved {
			return conflict(ReasonNotReserved, "reservation %d is %s; only paid reservations can be cancelled", reservationID, seat.Status)
		}
		if seat.UserID == nil {
			return repository.ErrNoEffect
		}
		ownerID := *seat.UserID
		if ownerID != actorID && actorRole != model.RoleAdmin {
			return conflict(ReasonForbidden, "reservation %d does not belong to you", reservationID)
		}

		res, err := s.settleCancellation(ctx, ticket, seat, ownerID, actorID, now)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settleCancellation performs the money and state movement shared by
// self-service cancels and admin-approved requests. Callers hold the
// ticket and reservation row locks; reference is the penalty instant.
func (s *ReservationService) settleCancellation(ctx context.Context, ticket *model.Ticket, seat *model.Reservation, ownerID, actorID uint64, reference time.Time) (*CancelResult, error) {
	quote := computeRefund(ticket.Price, ticket.DepartureStart, reference)

	balance, err := s.wallets.BalanceForUpdate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.wallets.ApplyWalletDelta(ctx, ownerID, quote.RefundAmount); err != nil {
		return nil, err
	}
	if err := s.seats.Release(ctx, seat.ID); err != nil {
		return nil, err
	}
	if err := s.tickets.AdjustRemaining(ctx, ticket.ID, 1); err != nil {
		return nil, err
	}

	entry := &model.HistoryEntry{
		ReservationID: seat.ID,
		UserID:        ownerID,
		Operation:     model.OperationCancel,
		Outcome:       model.OutcomeSuccessful,
		OccurredAt:    s.clock.Now(),
	}
	if actorID != ownerID {
		entry.Actor = &actorID
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.publishCapacity(ctx, ticket.ID, ticket.RemainingCapacity+1)
	return &CancelResult{
		ReservationID: seat.ID,
		Quote:         quote,
		NewBalance:    balance + quote.RefundAmount,
	}, nil
}

// CreateRequest files a CANCEL or CHANGE_DATE request for a paid
// reservation. The stored creation time later serves as the penalty
// reference if an admin approves a cancel request, so a user is not
// penalized for moderation latency.
func (s *ReservationService) CreateRequest(ctx context.Context, reservationID, userID uint64, subject, text string) (*model.ChangeRequest, error) {
	if subject != model.RequestCancel && subject != model.RequestChangeDate {
		return nil, validation("unknown request subject %q", subject)
	}
	seat, err := s.seats.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if seat.UserID == nil || *seat.UserID != userID {
		return nil, conflict(ReasonForbidden, "reservation %d does not belong to you", reservationID)
	}
	if seat.Status != model.StatusReserved {
		return nil, conflict(ReasonNotReserved, "reservation %d is %s; requests apply to paid reservations", reservationID, seat.Status)
	}
	ticket, err := s.tickets.Get(ctx, seat.TicketID)
	if err != nil {
		return nil, err
	}
	if !ticket.DepartureStart.After(s.clock.Now()) {
		return nil, conflict(ReasonDeparturePassed, "ticket %d has already departed", ticket.ID)
	}
	req := &model.ChangeRequest{
		ReservationID: reservationID,
		UserID:        userID,
		Subject:       subject,
		Text:          text,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveRequest resolves a pending request. For CANCEL requests it
// performs the cancellation with the penalty computed as of the request's
// submission time. If the departure has passed by the time the admin
// acts, the request is rejected instead and that rejection is committed
// before the conflict is reported, so a dead request cannot be retried.
// CHANGE_DATE requests are marked accepted only; rescheduling itself is
// handled elsewhere.
func (s *ReservationService) ApproveRequest(ctx context.Context, requestID, adminID uint64) (*CancelResult, error) {
	var (
		result       *CancelResult
		rejectReason string
		rejectedFor  string
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Checked {
			return conflict(ReasonRequestProcessed, "request %d has already been processed", requestID)
		}
		if req.Subject == model.RequestChangeDate {
			return s.requests.MarkChecked(ctx, requestID, adminID, true)
		}

		ticketID, err := s.seats.TicketIDOf(ctx, req.ReservationID)
		if err != nil {
			return err
		}
		ticket, err := s.tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		seat, err := s.seats.GetForUpdate(ctx, req.ReservationID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if !ticket.DepartureStart.After(now) {
			// The trip already left; commit the rejection so the queue
			// does not keep presenting a request nobody can grant.
			rejectReason = ReasonDeparturePassed
			rejectedFor = "departure has passed"
			return s.requests.MarkChecked(ctx, requestID, adminID, false)
		}
		if seat.Status != model.StatusReserved {
			rejectReason = ReasonNotReserved
			rejectedFor = "reservation is no longer paid"
			return s.requests.MarkChecked(ctx, requestID, adminID, false)
		}

		if err := s.requests.MarkChecked(ctx, requestID, adminID, true); err != nil {
			return err
		}
		res, err := s.settleCancellation(ctx, ticket, seat, req.UserID, adminID, req.CreatedAt)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rejectReason != "" {
		log.Printf("reservation: request %d auto-rejected: %s", requestID, rejectedFor)
		return nil, conflict(rejectReason, "request %d was rejected: %s", requestID, rejectedFor)
	}
	return result, nil
}

// RejectRequest marks a pending request as checked and denied. Nothing
// about the reservation changes.
func (s *ReservationService) RejectRequest(ctx context.Context, requestID, adminID uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Checked {
			return conflict(ReasonRequestProcessed, "request %d has already been processed", requestID)
		}
		return s.requests.MarkChecked(ctx, requestID, adminID, false)
	})
}
