package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  Status
// writes are always guarded on the expected current status so that an
// illegal or raced transition never half-applies.  All timestamps are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, venue_id, user_id, starts_at, status, party_size,
	deposit_required, deposit_paid, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (model.Reservation, error) {
	var res model.Reservation
	var status string
	err := row.Scan(&res.ID, &res.VenueID, &res.UserID, &res.StartsAt, &status, &res.PartySize,
		&res.DepositRequired, &res.DepositPaid, &res.CreatedAt, &res.UpdatedAt)
	res.Status = lifecycle.ReservationStatus(status)
	return res, err
}

// Create inserts a reservation in the REQUESTED status and populates
// the generated ID and timestamps on the returned value.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.Status == "" {
		res.Status = lifecycle.StatusRequested
	}
	out, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (venue_id, user_id, starts_at, status, party_size, deposit_required, deposit_paid)
		 VALUES (?,?,?,?,?,?,?)`,
		res.VenueID, res.UserID, res.StartsAt.UTC(), string(res.Status), res.PartySize,
		res.DepositRequired, res.DepositPaid)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	got, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// GetByID returns a single reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=?", id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrNotFound
	}
	return res, err
}

// GetForUpdateTx loads a reservation with a row lock inside the given
// transaction, serialising concurrent transitions on the same row.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? FOR UPDATE", id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrNotFound
	}
	return res, err
}

// UpdateStatusTx moves a reservation to a new status, guarded on the
// status the caller read.  RowsAffected 0 means another writer got
// there first and the caller must treat the transition as lost
// (ErrConflict); nothing is partially applied.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.ReservationStatus) error {
	out, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status=?, updated_at=NOW() WHERE id=? AND status=?",
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

// ListByUser returns all reservations for the given user, newest
// first.  When none exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByVenue returns all reservations for a venue after verifying
// that the caller owns it (admins bypass the check).  ErrForbidden is
// returned for foreign venues, ErrNotFound when the venue is unknown.
func (r *ReservationRepo) ListByVenue(ctx context.Context, venueID, ownerID uint64, admin bool) ([]model.Reservation, error) {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM venues WHERE id=?", venueID).Scan(&actualOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !admin && actualOwner != ownerID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE venue_id=? ORDER BY starts_at DESC", venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
