package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ahmdrza1383/db-project/internal/model"
)

// ReservationRepo provides data access to the reservations table. One
// row exists per seat slot of a ticket, created together with the ticket
// and never deleted; only status, user_id and held_at ever change, and
// only under the row lock taken by GetForUpdate or GetBySeatForUpdate.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, ticket_id, seat_number, status, user_id, held_at`

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var userID sql.NullInt64
	var heldAt sql.NullTime
	err := row.Scan(&res.ID, &res.TicketID, &res.SeatNumber, &res.Status, &userID, &heldAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		res.UserID = &uid
	}
	if heldAt.Valid {
		t := heldAt.Time
		res.HeldAt = &t
	}
	return &res, nil
}

// TicketIDOf returns the ticket a reservation belongs to without taking
// any lock. Operations keyed by reservation ID use it to discover which
// ticket row to lock first, so the global lock order is preserved even
// though the ticket is not known up front.
func (r *ReservationRepo) TicketIDOf(ctx context.Context, reservationID uint64) (uint64, error) {
	const q = `SELECT ticket_id FROM reservations WHERE id = ?`
	var ticketID uint64
	err := conn(ctx, r.db).QueryRowContext(ctx, q, reservationID).Scan(&ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrReservationNotFound
	}
	return ticketID, err
}

// Get retrieves a reservation without locking. Read-only paths only.
func (r *ReservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// GetForUpdate retrieves a reservation under an exclusive row lock. The
// caller must already hold the owning ticket's lock (or provably not need
// it) per the fixed lock order.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// GetBySeatForUpdate locks and returns the seat slot identified by
// ticket and seat number. Used by hold creation, where the caller knows
// the seat but not the reservation ID yet.
func (r *ReservationRepo) GetBySeatForUpdate(ctx context.Context, ticketID uint64, seatNumber uint32) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE ticket_id = ? AND seat_number = ? FOR UPDATE`
	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, ticketID, seatNumber))
}

// MarkTemporary claims a free seat for a user. The WHERE clause repeats
// the NOT_RESERVED precondition checked under the lock; a zero-row result
// means the state machine was violated and aborts the transaction.
func (r *ReservationRepo) MarkTemporary(ctx context.Context, id, userID uint64, heldAt time.Time) error {
	const q = `UPDATE reservations SET status = ?, user_id = ?, held_at = ? WHERE id = ? AND status = ?`
	return mustAffectOne(conn(ctx, r.db).ExecContext(ctx, q,
		model.StatusTemporary, userID, heldAt.UTC(), id, model.StatusNotReserved))
}

// MarkReserved finalises a paid seat, TEMPORARY → RESERVED.
func (r *ReservationRepo) MarkReserved(ctx context.Context, id uint64, paidAt time.Time) error {
	const q = `UPDATE reservations SET status = ?, held_at = ? WHERE id = ? AND status = ?`
	return mustAffectOne(conn(ctx, r.db).ExecContext(ctx, q,
		model.StatusReserved, paidAt.UTC(), id, model.StatusTemporary))
}

// Release returns a seat to the pool, clearing the holder and hold
// timestamp. Used by both expiry revert (from TEMPORARY) and
// cancellation (from RESERVED).
func (r *ReservationRepo) Release(ctx context.Context, id uint64) error {
	const q = `UPDATE reservations SET status = ?, user_id = NULL, held_at = NULL WHERE id = ? AND status <> ?`
	return mustAffectOne(conn(ctx, r.db).ExecContext(ctx, q, model.StatusNotReserved, id, model.StatusNotReserved))
}

// CreateSeats pre-creates count NOT_RESERVED seat rows for a new ticket,
// numbered from 1. Called inside the same transaction as the ticket
// insert so a ticket is never visible without its seat slots.
func (r *ReservationRepo) CreateSeats(ctx context.Context, ticketID uint64, count int) error {
	if count <= 0 {
		return nil
	}
	query := `INSERT INTO reservations (ticket_id, seat_number, status) VALUES `
	args := make([]interface{}, 0, count*3)
	for i := 0; i < count; i++ {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, ticketID, uint32(i+1), model.StatusNotReserved)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// ListByTicket returns all seat slots of a ticket ordered by seat
// number, for the ticket details page.
func (r *ReservationRepo) ListByTicket(ctx context.Context, ticketID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE ticket_id = ? ORDER BY seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		var userID sql.NullInt64
		var heldAt sql.NullTime
		if err := rows.Scan(&res.ID, &res.TicketID, &res.SeatNumber, &res.Status, &userID, &heldAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			res.UserID = &uid
		}
		if heldAt.Valid {
			t := heldAt.Time
			res.HeldAt = &t
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
