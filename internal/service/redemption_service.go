// Package service wires the lifecycle engine to persistence, metrics
// and notifications.  Each service depends on narrow interfaces the
// repositories satisfy, so the decision flows can be tested without a
// database.
package service

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/metrics"
	"github.com/reserbit/venue-lifecycle/internal/model"
	"github.com/reserbit/venue-lifecycle/internal/queue"
)

// TxRunner executes a function inside a database transaction.
// database.Runner is the production implementation.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Notifier publishes a notification event.  Delivery is fire-and-forget:
// callers log failures and never let them affect the business outcome.
type Notifier interface {
	Publish(ctx context.Context, ev queue.NotifyEvent) error
}

// NotifyFunc adapts a plain function to the Notifier interface.
type NotifyFunc func(ctx context.Context, ev queue.NotifyEvent) error

func (f NotifyFunc) Publish(ctx context.Context, ev queue.NotifyEvent) error { return f(ctx, ev) }

// UnitStore is the slice of the unit repository the redemption flow needs.
type UnitStore interface {
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RedeemableUnit, error)
	ApplyConsumptionTx(ctx context.Context, tx *sql.Tx, u model.RedeemableUnit, c lifecycle.Consumption) error
	AppendRedemptionTx(ctx context.Context, tx *sql.Tx, rec model.RedemptionRecord) error
	HasValidScanTx(ctx context.Context, tx *sql.Tx, unitID uint64) (bool, error)
	RecordScanTx(ctx context.Context, tx *sql.Tx, s model.TicketScan) error
}

// RedemptionService spends uses of redeemable units and validates
// seasonal-offer ticket scans.
type RedemptionService struct {
	units  UnitStore
	tx     TxRunner
	notify Notifier
	now    func() time.Time
}

// NewRedemptionService returns a RedemptionService over the given
// collaborators.
func NewRedemptionService(units UnitStore, tx TxRunner, notify Notifier) *RedemptionService {
	return &RedemptionService{units: units, tx: tx, notify: notify, now: time.Now}
}

// Redeem spends one use of a unit.  The unit row is locked, the
// decision is made by the validator, and the redemption record plus
// the counter update commit atomically.  On rejection nothing is
// written; the rejection reason passes through to the caller.
func (s *RedemptionService) Redeem(ctx context.Context, unitID, actorID uint64, note string) (model.RedeemableUnit, lifecycle.Consumption, error) {
	start := s.now()
	at := start.UTC()

	var (
		unit model.RedeemableUnit
		cons lifecycle.Consumption
	)
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		unit, err = s.units.GetForUpdateTx(ctx, tx, unitID)
		if err != nil {
			return err
		}
		cred, err := unit.Credential()
		if err != nil {
			return err
		}
		cons, err = lifecycle.Consume(cred, at)
		if err != nil {
			return err
		}
		rec := model.RedemptionRecord{
			UnitID:     unit.ID,
			SeqNo:      cons.UseNumber,
			RedeemedAt: at,
			ActorID:    actorID,
			Note:       note,
		}
		if err := s.units.AppendRedemptionTx(ctx, tx, rec); err != nil {
			return err
		}
		return s.units.ApplyConsumptionTx(ctx, tx, unit, cons)
	})
	metrics.RecordRedeemDuration(outcomeLabel(err), s.now().Sub(start).Seconds())
	if err != nil {
		return model.RedeemableUnit{}, lifecycle.Consumption{}, err
	}

	unit.UsesRemaining = cons.UsesRemaining
	unit.Status = cons.NewStatus
	ev := queue.NewNotifyEvent(unit.UserID, queue.EventUnitRedeemed, map[string]string{
		"unit_code":      unit.Code,
		"use_number":     strconv.Itoa(cons.UseNumber),
		"uses_remaining": strconv.Itoa(cons.UsesRemaining),
	})
	if err := s.notify.Publish(ctx, ev); err != nil {
		log.Printf("redeem: notify publish failed: %v", err)
	}
	return unit, cons, nil
}

// Scan validates a seasonal-offer ticket at the door.  Every attempt
// is recorded; an accepted scan also spends the ticket's single use so
// the same ticket can never validate twice.  The scan must fall within
// the tolerance window around the booked slot.
func (s *RedemptionService) Scan(ctx context.Context, unitID, actorID uint64) (model.RedeemableUnit, error) {
	at := s.now().UTC()

	var (
		unit      model.RedeemableUnit
		rejection error
	)
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		unit, err = s.units.GetForUpdateTx(ctx, tx, unitID)
		if err != nil {
			return err
		}
		if unit.Kind != model.UnitKindSeason || unit.SlotAt == nil {
			return &lifecycle.RejectionError{Reason: lifecycle.ReasonInvalidStatus, Message: "unit is not a scannable ticket"}
		}
		used, err := s.units.HasValidScanTx(ctx, tx, unit.ID)
		if err != nil {
			return err
		}
		rejection = lifecycle.ValidateScan(*unit.SlotAt, at, used)
		if rejection != nil {
			// The failed attempt is still recorded for the audit trail.
			return s.units.RecordScanTx(ctx, tx, model.TicketScan{
				UnitID: unit.ID, ScannedAt: at, ActorID: actorID, Valid: false,
			})
		}
		cred, err := unit.Credential()
		if err != nil {
			return err
		}
		// A ticket is spent whole by its one accepted scan.
		cred.SingleUse = true
		cons, err := lifecycle.Consume(cred, at)
		if err != nil {
			return err
		}
		if err := s.units.RecordScanTx(ctx, tx, model.TicketScan{
			UnitID: unit.ID, ScannedAt: at, ActorID: actorID, Valid: true,
		}); err != nil {
			return err
		}
		// Consuming the ticket is a redemption like any other, so the
		// scan leaves a redemption record behind too.
		if err := s.units.AppendRedemptionTx(ctx, tx, model.RedemptionRecord{
			UnitID:     unit.ID,
			SeqNo:      cons.UseNumber,
			RedeemedAt: at,
			ActorID:    actorID,
			Note:       "door scan",
		}); err != nil {
			return err
		}
		if err := s.units.ApplyConsumptionTx(ctx, tx, unit, cons); err != nil {
			return err
		}
		unit.UsesRemaining = cons.UsesRemaining
		unit.Status = cons.NewStatus
		return nil
	})
	if err != nil {
		return model.RedeemableUnit{}, err
	}
	if rejection != nil {
		return model.RedeemableUnit{}, rejection
	}

	ev := queue.NewNotifyEvent(unit.UserID, queue.EventTicketScanned, map[string]string{
		"unit_code": unit.Code,
	})
	if err := s.notify.Publish(ctx, ev); err != nil {
		log.Printf("scan: notify publish failed: %v", err)
	}
	return unit, nil
}

// outcomeLabel turns an operation result into a metric label: the
// rejection reason when the engine said no, "error" for infrastructure
// failures, "success" otherwise.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if reason := lifecycle.ReasonOf(err); reason != "" {
		return string(reason)
	}
	return "error"
}
