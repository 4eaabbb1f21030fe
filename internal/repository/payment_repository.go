package repository

import (
	"context"
	"database/sql"

	"github.com/ahmdrza1383/db-project/internal/model"
)

// PaymentRepo appends rows to the payments table. Payments are an audit
// ledger: every settlement attempt is recorded, rows are never updated or
// deleted.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo with the given DB handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment row and assigns the generated ID back to the
// struct.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, user_id, amount, outcome, method, paid_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		p.ReservationID, p.UserID, p.Amount, p.Outcome, p.Method, p.PaidAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListByReservation returns the settlement attempts recorded against a
// reservation, newest first.
func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	const q = `SELECT id, reservation_id, user_id, amount, outcome, method, paid_at
	           FROM payments WHERE reservation_id = ? ORDER BY paid_at DESC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.UserID, &p.Amount, &p.Outcome, &p.Method, &p.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// HistoryRepo appends rows to the reservations_history table, the
// immutable BUY/CANCEL audit trail.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo constructs a HistoryRepo with the given DB handle.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Append inserts a history row and assigns the generated ID back to the
// struct.
func (r *HistoryRepo) Append(ctx context.Context, h *model.HistoryEntry) error {
	const q = `INSERT INTO reservations_history (reservation_id, user_id, operation, outcome, actor_id, occurred_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	var actor sql.NullInt64
	if h.Actor != nil {
		actor = sql.NullInt64{Int64: int64(*h.Actor), Valid: true}
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		h.ReservationID, h.UserID, h.Operation, h.Outcome, actor, h.OccurredAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}
