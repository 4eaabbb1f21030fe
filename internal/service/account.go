package service

import (
	"context"

	"github.com/ahmdrza1383/db-project/internal/model"
)

// Profile returns the account and wallet balance of a user.
func (s *ReservationService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	return s.wallets.Get(ctx, userID)
}

// ListPayments returns the settlement attempts recorded against a
// reservation the caller currently holds. Admins may inspect any
// reservation.
func (s *ReservationService) ListPayments(ctx context.Context, reservationID, actorID uint64, actorRole string) ([]model.Payment, error) {
	seat, err := s.seats.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorRole != model.RoleAdmin && !seat.HeldBy(actorID) {
		return nil, conflict(ReasonForbidden, "reservation %d does not belong to you", reservationID)
	}
	return s.payments.ListByReservation(ctx, reservationID)
}
