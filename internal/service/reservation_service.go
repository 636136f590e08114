package service

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
	"github.com/reserbit/venue-lifecycle/internal/queue"
	"github.com/reserbit/venue-lifecycle/internal/repository"
)

// ReservationStore is the slice of the reservation repository the
// transition flows need.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.ReservationStatus) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
}

// CounterStore increments per-customer reliability counters.
type CounterStore interface {
	IncrementTx(ctx context.Context, tx *sql.Tx, userID uint64, column string, delta int) error
	Increment(ctx context.Context, userID uint64, column string, delta int) error
}

// ReservationService drives reservations through the status table.
// Every transition is validated against the table before it is
// written, and the write itself is guarded on the status the service
// read under the row lock.
type ReservationService struct {
	reservations ReservationStore
	counters     CounterStore
	tx           TxRunner
	notify       Notifier
	now          func() time.Time
}

// NewReservationService returns a ReservationService over the given
// collaborators.
func NewReservationService(reservations ReservationStore, counters CounterStore, tx TxRunner, notify Notifier) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		counters:     counters,
		tx:           tx,
		notify:       notify,
		now:          time.Now,
	}
}

// Book creates a reservation in the REQUESTED status and counts it
// toward the customer's lifetime total.
func (s *ReservationService) Book(ctx context.Context, venueID, userID uint64, startsAt time.Time, partySize uint32) (model.Reservation, error) {
	res := model.Reservation{
		VenueID:   venueID,
		UserID:    userID,
		StartsAt:  startsAt.UTC(),
		Status:    lifecycle.StatusRequested,
		PartySize: partySize,
	}
	if err := s.reservations.Create(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	if err := s.counters.Increment(ctx, userID, repository.CounterTotalReservations, 1); err != nil {
		log.Printf("book: counter increment failed: %v", err)
	}
	return res, nil
}

// ListMine returns the caller's reservations.
func (s *ReservationService) ListMine(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// cancellationTarget picks which cancellation variant a reservation
// moves to: venue cancellations always land on CANCELLED_BY_VENUE,
// customers cancelling off the waitlist land on CANCELLED_WAITLIST, and
// everything else on CANCELLED_BY_USER.
func cancellationTarget(current lifecycle.ReservationStatus, byVenue bool) lifecycle.ReservationStatus {
	if byVenue {
		return lifecycle.StatusCancelledByVenue
	}
	if current == lifecycle.StatusWaitlist || current == lifecycle.StatusPendingWaitlist {
		return lifecycle.StatusCancelledWaitlist
	}
	return lifecycle.StatusCancelledByUser
}

// Cancel cancels a reservation, classifying the cancellation into a
// penalty tier by how far ahead of the event it arrives.  Customer
// cancellations inside the blocked window are rejected; venue
// cancellations bypass the window and carry no penalty.  The penalty
// counter and the status change commit atomically.  callerID must own
// the reservation unless the cancellation is venue-initiated.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, callerID uint64, byVenue bool) (model.Reservation, lifecycle.CancellationTier, error) {
	at := s.now().UTC()

	var (
		res  model.Reservation
		tier lifecycle.CancellationTier
	)
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = s.reservations.GetForUpdateTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if !byVenue && res.UserID != callerID {
			return repository.ErrForbidden
		}
		target := cancellationTarget(res.Status, byVenue)
		if err := lifecycle.ValidateTransition(res.Status, target); err != nil {
			return err
		}
		tier = lifecycle.ClassifyCancellation(res.StartsAt, at)
		if !byVenue {
			switch tier {
			case lifecycle.TierBlocked:
				return &lifecycle.RejectionError{
					Reason:  lifecycle.ReasonCancelWindowClosed,
					Message: "too close to the event to cancel",
				}
			case lifecycle.TierLate:
				if err := s.counters.IncrementTx(ctx, tx, res.UserID, repository.CounterLateCancellations, 1); err != nil {
					return err
				}
			case lifecycle.TierVeryLate:
				if err := s.counters.IncrementTx(ctx, tx, res.UserID, repository.CounterVeryLateCancels, 1); err != nil {
					return err
				}
			}
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, res.Status, target); err != nil {
			return err
		}
		res.Status = target
		return nil
	})
	if err != nil {
		return model.Reservation{}, "", err
	}

	ev := queue.NewNotifyEvent(res.UserID, queue.EventReservationCancelled, map[string]string{
		"reservation_id": strconv.FormatUint(res.ID, 10),
		"tier":           string(tier),
		"by_venue":       strconv.FormatBool(byVenue),
	})
	if err := s.notify.Publish(ctx, ev); err != nil {
		log.Printf("cancel: notify publish failed: %v", err)
	}
	return res, tier, nil
}

// SetStatus applies a staff-driven transition: confirming, refusing,
// flagging no-shows, resolving disputes, walking the deposit flow or
// expiring a stale request.  Marking a visit CONSUMED counts an
// honoured reservation; confirming a no-show counts against the
// customer.
func (s *ReservationService) SetStatus(ctx context.Context, reservationID uint64, target lifecycle.ReservationStatus) (model.Reservation, error) {
	var res model.Reservation
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = s.reservations.GetForUpdateTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if err := lifecycle.ValidateTransition(res.Status, target); err != nil {
			return err
		}
		if res.Status == target {
			// Self-transitions are legal no-ops.
			return nil
		}
		switch target {
		case lifecycle.StatusConsumed:
			if err := s.counters.IncrementTx(ctx, tx, res.UserID, repository.CounterHonored, 1); err != nil {
				return err
			}
		case lifecycle.StatusNoShowConfirmed:
			if err := s.counters.IncrementTx(ctx, tx, res.UserID, repository.CounterNoShows, 1); err != nil {
				return err
			}
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, res.Status, target); err != nil {
			return err
		}
		res.Status = target
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}

	ev := queue.NewNotifyEvent(res.UserID, queue.EventReservationStatus, map[string]string{
		"reservation_id": strconv.FormatUint(res.ID, 10),
		"status":         string(res.Status),
	})
	if err := s.notify.Publish(ctx, ev); err != nil {
		log.Printf("set-status: notify publish failed: %v", err)
	}
	return res, nil
}
