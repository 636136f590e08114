package database

import (
	"context"
	"database/sql"
)

// Runner executes functions inside a database transaction.  Services
// depend on the small interface so tests can substitute a fake that
// runs the function without a live database.
type Runner struct {
	DB *sql.DB
}

// InTx begins a transaction, runs fn, and commits when fn returns nil.
// Any error from fn or from Commit rolls the transaction back; fn must
// not retain the *sql.Tx past its return.
func (r Runner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
