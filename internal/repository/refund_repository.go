package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
)

// RefundRepo stores refund requests.  Processing is idempotent: the
// status flip from REQUESTED to PROCESSED is guarded so a request can
// only be processed once no matter how many approvals race.
type RefundRepo struct {
	db *sql.DB
}

// NewRefundRepo returns a new RefundRepo bound to the given database.
func NewRefundRepo(db *sql.DB) *RefundRepo { return &RefundRepo{db: db} }

const refundColumns = `id, unit_id, status, kind, refund_cents, credit_cents, reason,
	requested_at, processed_at`

func scanRefund(row interface{ Scan(...interface{}) error }) (model.RefundRequest, error) {
	var rr model.RefundRequest
	var kind string
	err := row.Scan(&rr.ID, &rr.UnitID, &rr.Status, &kind, &rr.RefundCents, &rr.CreditCents,
		&rr.Reason, &rr.RequestedAt, &rr.ProcessedAt)
	rr.Kind = lifecycle.RefundKind(kind)
	return rr, err
}

// CreateTx inserts a refund request inside the caller's transaction and
// fills in the generated ID.
func (r *RefundRepo) CreateTx(ctx context.Context, tx *sql.Tx, rr *model.RefundRequest) error {
	out, err := tx.ExecContext(ctx,
		`INSERT INTO refund_requests (unit_id, status, kind, refund_cents, credit_cents, reason, requested_at, processed_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rr.UnitID, rr.Status, string(rr.Kind), rr.RefundCents, rr.CreditCents, rr.Reason,
		rr.RequestedAt.UTC(), nullableTime(rr.ProcessedAt))
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	rr.ID = uint64(id)
	return nil
}

// GetByID returns a single refund request or ErrNotFound.
func (r *RefundRepo) GetByID(ctx context.Context, id uint64) (model.RefundRequest, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+refundColumns+" FROM refund_requests WHERE id=?", id)
	rr, err := scanRefund(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rr, ErrNotFound
	}
	return rr, err
}

// GetForUpdateTx locks a refund request row for processing.
func (r *RefundRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RefundRequest, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+refundColumns+" FROM refund_requests WHERE id=? FOR UPDATE", id)
	rr, err := scanRefund(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rr, ErrNotFound
	}
	return rr, err
}

// MarkProcessedTx flips a request from REQUESTED to PROCESSED exactly
// once.  RowsAffected 0 means another approval already ran, which the
// caller reports as ErrConflict.
func (r *RefundRepo) MarkProcessedTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	out, err := tx.ExecContext(ctx,
		"UPDATE refund_requests SET status=?, processed_at=? WHERE id=? AND status=?",
		model.RefundProcessed, at.UTC(), id, model.RefundRequested)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByUnit returns all refund requests raised against a unit.
func (r *RefundRepo) ListByUnit(ctx context.Context, unitID uint64) ([]model.RefundRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+refundColumns+" FROM refund_requests WHERE unit_id=? ORDER BY requested_at DESC", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RefundRequest, 0)
	for rows.Next() {
		rr, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListPending returns refund requests still awaiting approval, oldest
// first, for the staff work queue.
func (r *RefundRepo) ListPending(ctx context.Context) ([]model.RefundRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+refundColumns+" FROM refund_requests WHERE status=? ORDER BY requested_at", model.RefundRequested)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RefundRequest, 0)
	for rows.Next() {
		rr, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
