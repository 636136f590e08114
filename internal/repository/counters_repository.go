package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reserbit/venue-lifecycle/internal/model"
)

// Counter columns the booking and billing flows may increment.  The
// whitelist keeps column names out of caller hands; anything else is
// rejected before it reaches SQL.
const (
	CounterHonored           = "honored"
	CounterNoShows           = "no_shows"
	CounterLateCancellations = "late_cancellations"
	CounterVeryLateCancels   = "very_late_cancellations"
	CounterTotalReservations = "total_reservations"
	CounterReviewsPosted     = "reviews_posted"
	CounterPaidConversions   = "paid_conversions"
)

var counterColumns = map[string]bool{
	CounterHonored:           true,
	CounterNoShows:           true,
	CounterLateCancellations: true,
	CounterVeryLateCancels:   true,
	CounterTotalReservations: true,
	CounterReviewsPosted:     true,
	CounterPaidConversions:   true,
}

// CountersRepo maintains the per-customer reliability counters used by
// the scoring engine.
type CountersRepo struct {
	db *sql.DB
}

// NewCountersRepo returns a new CountersRepo bound to the given database.
func NewCountersRepo(db *sql.DB) *CountersRepo { return &CountersRepo{db: db} }

// Get returns the counters row for a user.  A user with no row yet
// simply has all counters at zero, not an error.
func (r *CountersRepo) Get(ctx context.Context, userID uint64) (model.ReliabilityCounters, error) {
	c := model.ReliabilityCounters{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT honored, no_shows, late_cancellations, very_late_cancellations,
		        total_reservations, reviews_posted, paid_conversions, updated_at
		   FROM reliability_counters WHERE user_id=?`, userID).
		Scan(&c.Honored, &c.NoShows, &c.LateCancellations, &c.VeryLateCancels,
			&c.TotalReservations, &c.ReviewsPosted, &c.PaidConversions, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReliabilityCounters{UserID: userID}, nil
	}
	return c, err
}

// Increment bumps one counter column by delta, creating the row on
// first touch.  The column name must be one of the Counter* constants.
func (r *CountersRepo) Increment(ctx context.Context, userID uint64, column string, delta int) error {
	return r.exec(ctx, r.db, userID, column, delta)
}

// IncrementTx is Increment inside the caller's transaction, used when
// a counter bump must commit atomically with a status transition.
func (r *CountersRepo) IncrementTx(ctx context.Context, tx *sql.Tx, userID uint64, column string, delta int) error {
	return r.exec(ctx, tx, userID, column, delta)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *CountersRepo) exec(ctx context.Context, db execer, userID uint64, column string, delta int) error {
	if !counterColumns[column] {
		return fmt.Errorf("unknown counter column %q", column)
	}
	// The column name comes from the whitelist above, never from input.
	q := fmt.Sprintf(
		`INSERT INTO reliability_counters (user_id, %s) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE %s=%s+?, updated_at=NOW()`,
		column, column, column)
	_, err := db.ExecContext(ctx, q, userID, delta, delta)
	return err
}
