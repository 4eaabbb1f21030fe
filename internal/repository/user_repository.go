package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ahmdrza1383/db-project/internal/model"
)

// UserRepo provides access to the users table. The reservation core only
// ever touches the wallet balance, and only inside the same locked
// transaction as the payment or refund it belongs to.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Get retrieves a user without locking.
func (r *UserRepo) Get(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, email, name, role, wallet_balance, created_at FROM users WHERE id = ?`
	var u model.User
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.WalletBalance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// BalanceForUpdate locks the user's row and returns the current wallet
// balance. The wallet is the last lock in the global order, so this is
// always called after the ticket and reservation rows are held.
func (r *UserRepo) BalanceForUpdate(ctx context.Context, id uint64) (int64, error) {
	const q = `SELECT wallet_balance FROM users WHERE id = ? FOR UPDATE`
	var balance int64
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return balance, err
}

// ApplyWalletDelta debits (negative) or credits (positive) the wallet.
// The guard prevents a debit from driving the balance negative; the
// service has already verified sufficiency under the row lock, so a
// zero-row result is a bug signal.
func (r *UserRepo) ApplyWalletDelta(ctx context.Context, id uint64, delta int64) error {
	const q = `UPDATE users SET wallet_balance = wallet_balance + ? WHERE id = ? AND wallet_balance + ? >= 0`
	return mustAffectOne(conn(ctx, r.db).ExecContext(ctx, q, delta, id, delta))
}
