package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
)

// UnitRepo manages redeemable units, their redemption records and
// ticket scans.  The write paths are compare-and-swap updates guarded
// on the state the caller read under a row lock, so a raced decrement
// or double status change surfaces as ErrConflict instead of silently
// corrupting counters.
type UnitRepo struct {
	db *sql.DB
}

// NewUnitRepo returns a new UnitRepo bound to the given database.
func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{db: db} }

const unitColumns = `id, code, user_id, venue_id, kind, status, price_cents, paid,
	total_uses, uses_remaining, valid_from, valid_until, allowed_weekdays,
	window_start, window_end, slot_at, created_at, updated_at`

func scanUnit(row interface{ Scan(...interface{}) error }) (model.RedeemableUnit, error) {
	var u model.RedeemableUnit
	var status string
	err := row.Scan(&u.ID, &u.Code, &u.UserID, &u.VenueID, &u.Kind, &status, &u.PriceCents, &u.Paid,
		&u.TotalUses, &u.UsesRemaining, &u.ValidFrom, &u.ValidUntil, &u.AllowedWeekdays,
		&u.WindowStart, &u.WindowEnd, &u.SlotAt, &u.CreatedAt, &u.UpdatedAt)
	u.Status = lifecycle.UnitStatus(status)
	return u, err
}

// GetByID returns a single unit or ErrNotFound.
func (r *UnitRepo) GetByID(ctx context.Context, id uint64) (model.RedeemableUnit, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM redeemable_units WHERE id=?", id)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByCode resolves a unit by its public voucher code.
func (r *UnitRepo) GetByCode(ctx context.Context, code string) (model.RedeemableUnit, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM redeemable_units WHERE code=?", code)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetForUpdateTx loads a unit with a row lock inside the given
// transaction.  Concurrent redeem or refund attempts on the same unit
// queue up on the lock instead of double-spending a use.
func (r *UnitRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RedeemableUnit, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM redeemable_units WHERE id=? FOR UPDATE", id)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// ApplyConsumptionTx writes one consumed use back to the unit row.
// The UPDATE is guarded on the uses_remaining and status the caller
// read; RowsAffected 0 means the row moved underneath us and the whole
// transaction must roll back (ErrConflict).
func (r *UnitRepo) ApplyConsumptionTx(ctx context.Context, tx *sql.Tx, u model.RedeemableUnit, c lifecycle.Consumption) error {
	out, err := tx.ExecContext(ctx,
		`UPDATE redeemable_units SET uses_remaining=?, status=?, updated_at=NOW()
		 WHERE id=? AND uses_remaining=? AND status=?`,
		c.UsesRemaining, string(c.NewStatus),
		u.ID, u.UsesRemaining, string(u.Status))
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

// AppendRedemptionTx inserts one immutable redemption record.  The
// unique (unit_id, seq_no) index turns an accidental duplicate into a
// conflict rather than a silent second insert.
func (r *UnitRepo) AppendRedemptionTx(ctx context.Context, tx *sql.Tx, rec model.RedemptionRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO redemption_records (unit_id, seq_no, redeemed_at, actor_id, note)
		 VALUES (?,?,?,?,?)`,
		rec.UnitID, rec.SeqNo, rec.RedeemedAt.UTC(), rec.ActorID, rec.Note)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// UpdateStatusTx moves a unit to a new status, guarded on the current
// one.  Used by the refund flow to close a unit out exactly once.
func (r *UnitRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.UnitStatus) error {
	out, err := tx.ExecContext(ctx,
		"UPDATE redeemable_units SET status=?, updated_at=NOW() WHERE id=? AND status=?",
		string(to), id, string(from))
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

// HasValidScanTx reports whether the unit already has an accepted scan
// on record.  Runs inside the scan transaction while the unit row is
// locked so two concurrent scans cannot both pass.
func (r *UnitRepo) HasValidScanTx(ctx context.Context, tx *sql.Tx, unitID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ticket_scans WHERE unit_id=? AND valid=1", unitID).Scan(&n)
	return n > 0, err
}

// RecordScanTx appends one scan attempt, valid or not.
func (r *UnitRepo) RecordScanTx(ctx context.Context, tx *sql.Tx, s model.TicketScan) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_scans (unit_id, scanned_at, actor_id, valid) VALUES (?,?,?,?)",
		s.UnitID, s.ScannedAt.UTC(), s.ActorID, s.Valid)
	return err
}

// ListByUser returns all units owned by a user, newest first.
func (r *UnitRepo) ListByUser(ctx context.Context, userID uint64) ([]model.RedeemableUnit, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+unitColumns+" FROM redeemable_units WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

// ListRefundableByVenue returns every open unit of a venue that still
// holds paid value, used when a venue shuts down and all outstanding
// value must be returned.  Open means PURCHASED or PARTIALLY_CONSUMED.
func (r *UnitRepo) ListRefundableByVenue(ctx context.Context, venueID uint64) ([]model.RedeemableUnit, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+unitColumns+` FROM redeemable_units
		 WHERE venue_id=? AND paid=1 AND status IN (?,?) ORDER BY id`,
		venueID, string(lifecycle.UnitPurchased), string(lifecycle.UnitPartiallyConsumed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

// ListRedemptions returns the redemption history of a unit in
// sequence order.
func (r *UnitRepo) ListRedemptions(ctx context.Context, unitID uint64) ([]model.RedemptionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, unit_id, seq_no, redeemed_at, actor_id, note
		 FROM redemption_records WHERE unit_id=? ORDER BY seq_no`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RedemptionRecord, 0)
	for rows.Next() {
		var rec model.RedemptionRecord
		if err := rows.Scan(&rec.ID, &rec.UnitID, &rec.SeqNo, &rec.RedeemedAt, &rec.ActorID, &rec.Note); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func collectUnits(rows *sql.Rows) ([]model.RedeemableUnit, error) {
	out := make([]model.RedeemableUnit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
