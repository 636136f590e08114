package repository

import (
	"context"
	"database/sql"

	"github.com/reserbit/venue-lifecycle/internal/model"
)

// LedgerRepo appends to the money ledger.  The ledger is strictly
// append-only; there are no update or delete paths.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// Append writes one ledger entry.  Refund flows call this after their
// transaction commits; a failure here is logged by the caller and never
// rolls the refund back.
func (r *LedgerRepo) Append(ctx context.Context, e model.LedgerEntry) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO ledger_entries (reference_id, ref_type, gross_cents) VALUES (?,?,?)",
		e.ReferenceID, e.RefType, e.GrossCents)
	return err
}
