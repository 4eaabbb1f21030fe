package repository

import (
	"context"
	"database/sql"
	"log"
)

type txKey struct{}
type hookKey struct{}

// CommitHooks collects side effects that must not run unless the
// surrounding transaction commits: cache writes, expiry-task scheduling,
// search-index updates. Hooks run in registration order after commit.
// A hook handles its own failures by logging; nothing it does can
// change the outcome of the committed operation.
type CommitHooks struct {
	fns []func()
}

// Run executes the registered hooks in order.
func (h *CommitHooks) Run() {
	for _, fn := range h.fns {
		fn()
	}
}

// NewHookContext returns a context carrying a fresh post-commit hook list
// together with the list itself. TxRunner installs one per transaction;
// test fakes can install their own to observe hook registration.
func NewHookContext(ctx context.Context) (context.Context, *CommitHooks) {
	hooks := &CommitHooks{}
	return context.WithValue(ctx, hookKey{}, hooks), hooks
}

// AfterCommit registers fn to run after the current transaction commits.
// Outside a transaction (no hook list in ctx) fn runs immediately; there
// is nothing to defer it behind.
func AfterCommit(ctx context.Context, fn func()) {
	if hooks, ok := ctx.Value(hookKey{}).(*CommitHooks); ok {
		hooks.fns = append(hooks.fns, fn)
		return
	}
	fn()
}

// TxRunner executes units of work inside a single database transaction.
// The transaction travels in the context; repository methods pick it up
// via execer and therefore participate in the caller's transaction
// automatically. Any error from fn triggers a full rollback, so no
// partial writes are ever observable. Post-commit hooks registered
// through AfterCommit run only after Commit returns nil.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner returns a TxRunner bound to the given database.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{db: db} }

// WithTx runs fn inside a transaction. Nested calls reuse the ongoing
// transaction rather than opening a second one.
func (r *TxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	ctx = context.WithValue(ctx, txKey{}, tx)
	ctx, hooks := NewHookContext(ctx)
	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("tx: rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	hooks.Run()
	return nil
}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories resolve it per call so the same method works standalone
// and inside a TxRunner transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func conn(ctx context.Context, db *sql.DB) execer {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return db
}

// mustAffectOne converts a zero-rows-affected result into ErrNoEffect.
// Deltas passed to the capacity and wallet updates are never zero, so a
// zero count always means the targeted row was missing.
func mustAffectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoEffect
	}
	return nil
}
