package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ahmdrza1383/db-project/internal/model"
)

// TicketRepo manages persistence for the tickets table, the capacity
// ledger of the system. The remaining_capacity column is only ever
// touched through AdjustRemaining inside a locked transaction.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, origin, destination, vehicle_type, departure_start, price, total_capacity, remaining_capacity, status, created_at`

func scanTicket(row *sql.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.Origin, &t.Destination, &t.VehicleType, &t.DepartureStart,
		&t.Price, &t.TotalCapacity, &t.RemainingCapacity, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Get retrieves a ticket without locking it. Use for read-only paths
// such as details pages and penalty previews.
func (r *TicketRepo) Get(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	return scanTicket(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// GetForUpdate retrieves a ticket under an exclusive row lock. It must
// be called inside a TxRunner transaction and is always the first lock an
// operation takes; the fixed ticket → reservation → wallet order is what
// keeps concurrent operations deadlock-free.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ? FOR UPDATE`
	return scanTicket(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// AdjustRemaining shifts remaining_capacity by delta (±1 for single-seat
// transitions). The caller has already validated the bounds while
// holding the row lock; the WHERE guard is a belt against a violated
// invariant reaching the ledger, and a zero-row result aborts the
// transaction via ErrNoEffect.
func (r *TicketRepo) AdjustRemaining(ctx context.Context, id uint64, delta int) error {
	const q = `UPDATE tickets
	           SET remaining_capacity = remaining_capacity + ?
	           WHERE id = ? AND remaining_capacity + ? BETWEEN 0 AND total_capacity`
	return mustAffectOne(conn(ctx, r.db).ExecContext(ctx, q, delta, id, delta))
}

// Create inserts a new ticket and assigns the generated ID back to the
// struct. remaining_capacity starts equal to total_capacity and status
// defaults to ACTIVE in the schema.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets (origin, destination, vehicle_type, departure_start, price, total_capacity, remaining_capacity)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		t.Origin, t.Destination, t.VehicleType, t.DepartureStart.UTC(), t.Price, t.TotalCapacity, t.TotalCapacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	got, err := scanTicket(conn(ctx, r.db).QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *got
	return nil
}
