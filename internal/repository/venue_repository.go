package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/reserbit/venue-lifecycle/internal/model"
)

// VenueRepo provides access to the venues table.
type VenueRepo struct{ db *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// GetByID returns a single venue or ErrNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, name, city, is_active, created_at FROM venues WHERE id=?",
		id).Scan(&v.ID, &v.OwnerID, &v.Name, &v.City, &v.Active, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

// ListActive returns all venues currently accepting bookings, ordered
// by name for deterministic browse output.
func (r *VenueRepo) ListActive(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, name, city, is_active, created_at FROM venues WHERE is_active=1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Name, &v.City, &v.Active, &v.CreatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// Deactivate flips a venue to inactive, verifying ownership.  It
// returns ErrForbidden when the venue belongs to another owner and
// ErrNotFound when it does not exist.  Already-inactive venues are
// treated as a no-op success so the bulk refund that follows stays
// re-runnable.
func (r *VenueRepo) Deactivate(ctx context.Context, venueID, ownerID uint64, admin bool) error {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM venues WHERE id=?", venueID).Scan(&actualOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !admin && actualOwner != ownerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "UPDATE venues SET is_active=0 WHERE id=?", venueID)
	return err
}
