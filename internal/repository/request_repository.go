package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ahmdrza1383/db-project/internal/model"
)

// RequestRepo provides access to the requests table holding user-submitted
// cancel/change requests awaiting admin moderation.
type RequestRepo struct {
	db *sql.DB
}

// NewRequestRepo constructs a RequestRepo with the given DB handle.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

// Create inserts a new pending request and assigns the generated ID and
// creation timestamp back to the struct. The creation timestamp matters:
// it is the penalty reference instant if the request is later approved.
func (r *RequestRepo) Create(ctx context.Context, req *model.ChangeRequest) error {
	const q = `INSERT INTO requests (reservation_id, user_id, subject, text) VALUES (?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, req.ReservationID, req.UserID, req.Subject, req.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	const sel = `SELECT created_at FROM requests WHERE id = ?`
	return conn(ctx, r.db).QueryRowContext(ctx, sel, req.ID).Scan(&req.CreatedAt)
}

// GetForUpdate locks and returns a request row. The request lock is
// taken before any ticket/reservation/wallet lock so that two admins
// processing the same request serialise on it immediately.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id uint64) (*model.ChangeRequest, error) {
	const q = `SELECT id, reservation_id, user_id, subject, text, is_checked, is_accepted, checked_by, created_at
	           FROM requests WHERE id = ? FOR UPDATE`
	var req model.ChangeRequest
	var checkedBy sql.NullInt64
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&req.ID, &req.ReservationID, &req.UserID, &req.Subject, &req.Text,
		&req.Checked, &req.Accepted, &checkedBy, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if checkedBy.Valid {
		admin := uint64(checkedBy.Int64)
		req.CheckedBy = &admin
	}
	return &req, nil
}

// MarkChecked records the moderation outcome. The is_checked guard makes
// double-processing impossible even if the caller skipped the lock.
func (r *RequestRepo) MarkChecked(ctx context.Context, id, adminID uint64, accepted bool) error {
	const q = `UPDATE requests SET is_checked = TRUE, is_accepted = ?, checked_by = ? WHERE id = ? AND is_checked = FALSE`
	return mustAffectOne(conn(ctx, r.db).ExecContext(ctx, q, accepted, adminID, id))
}
