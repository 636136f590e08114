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
	"github.com/reserbit/venue-lifecycle/internal/repository"
)

// RefundUnitStore is the slice of the unit repository the refund flow
// needs.
type RefundUnitStore interface {
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RedeemableUnit, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.UnitStatus) error
	ListRefundableByVenue(ctx context.Context, venueID uint64) ([]model.RedeemableUnit, error)
}

// RefundStore persists refund requests.
type RefundStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, rr *model.RefundRequest) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RefundRequest, error)
	MarkProcessedTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error
	ListPending(ctx context.Context) ([]model.RefundRequest, error)
}

// LedgerAppender writes money movements to the append-only ledger.
type LedgerAppender interface {
	Append(ctx context.Context, e model.LedgerEntry) error
}

// CreditNoteIssuer registers credit notes with the external invoicing
// system.
type CreditNoteIssuer interface {
	CreateCreditNote(ctx context.Context, unitID, userID uint64, amountCents int64, reason string) (string, error)
}

// RefundService plans and processes refunds of redeemable units.
// Planning is decided by the refund calculator; processing flips the
// unit and the request exactly once and then fires the best-effort
// side effects (ledger, credit note, notification) that must never
// undo a committed refund.
type RefundService struct {
	units   RefundUnitStore
	refunds RefundStore
	ledger  LedgerAppender
	credits CreditNoteIssuer
	tx      TxRunner
	notify  Notifier
	now     func() time.Time
}

// NewRefundService returns a RefundService over the given collaborators.
func NewRefundService(units RefundUnitStore, refunds RefundStore, ledger LedgerAppender, credits CreditNoteIssuer, tx TxRunner, notify Notifier) *RefundService {
	return &RefundService{
		units:   units,
		refunds: refunds,
		ledger:  ledger,
		credits: credits,
		tx:      tx,
		notify:  notify,
		now:     time.Now,
	}
}

// Request plans a refund for a unit.  Auto-approved plans (full cash
// refunds and credit conversions) are processed in the same
// transaction; partial cash refunds are recorded and wait for staff
// approval.  callerID must own the unit; zero skips the ownership
// check for platform-initiated refunds.
func (s *RefundService) Request(ctx context.Context, unitID, callerID uint64, reason string, preferCredit bool) (model.RefundRequest, error) {
	start := s.now()
	at := start.UTC()

	var (
		rr   model.RefundRequest
		unit model.RedeemableUnit
	)
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		unit, err = s.units.GetForUpdateTx(ctx, tx, unitID)
		if err != nil {
			return err
		}
		if callerID != 0 && unit.UserID != callerID {
			return repository.ErrForbidden
		}
		plan, err := lifecycle.PlanRefund(lifecycle.RefundableState{
			Status:     unit.Status,
			Paid:       unit.Paid,
			PriceCents: unit.PriceCents,
			ExpiresAt:  unit.ValidUntil,
		}, at, preferCredit)
		if err != nil {
			return err
		}
		rr = model.RefundRequest{
			UnitID:      unit.ID,
			Status:      model.RefundRequested,
			Kind:        plan.Kind,
			RefundCents: plan.RefundCents,
			CreditCents: plan.CreditCents,
			Reason:      reason,
			RequestedAt: at,
		}
		if plan.AutoApproved {
			rr.Status = model.RefundProcessed
			rr.ProcessedAt = &at
			if err := s.units.UpdateStatusTx(ctx, tx, unit.ID, unit.Status, plan.NewStatus); err != nil {
				return err
			}
			unit.Status = plan.NewStatus
		}
		return s.refunds.CreateTx(ctx, tx, &rr)
	})
	metrics.RecordRefundDuration(outcomeLabel(err), s.now().Sub(start).Seconds())
	if err != nil {
		return model.RefundRequest{}, err
	}

	if rr.Status == model.RefundProcessed {
		s.afterProcessed(ctx, rr, unit)
	}
	return rr, nil
}

// Approve processes a pending partial refund.  Approving an
// already-processed request is a no-op returning the stored request,
// so retried approvals cannot refund twice.
func (s *RefundService) Approve(ctx context.Context, refundID uint64) (model.RefundRequest, error) {
	start := s.now()
	at := start.UTC()

	var (
		rr        model.RefundRequest
		unit      model.RedeemableUnit
		processed bool
	)
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		rr, err = s.refunds.GetForUpdateTx(ctx, tx, refundID)
		if err != nil {
			return err
		}
		if rr.Status == model.RefundProcessed {
			return nil
		}
		unit, err = s.units.GetForUpdateTx(ctx, tx, rr.UnitID)
		if err != nil {
			return err
		}
		target := lifecycle.UnitRefunded
		if rr.Kind == lifecycle.RefundCredit {
			target = lifecycle.UnitCredited
		}
		if err := s.units.UpdateStatusTx(ctx, tx, unit.ID, unit.Status, target); err != nil {
			return err
		}
		if err := s.refunds.MarkProcessedTx(ctx, tx, rr.ID, at); err != nil {
			return err
		}
		unit.Status = target
		rr.Status = model.RefundProcessed
		rr.ProcessedAt = &at
		processed = true
		return nil
	})
	metrics.RecordRefundDuration(outcomeLabel(err), s.now().Sub(start).Seconds())
	if err != nil {
		return model.RefundRequest{}, err
	}

	if processed {
		s.afterProcessed(ctx, rr, unit)
	}
	return rr, nil
}

// ListPending returns refund requests awaiting staff approval.
func (s *RefundService) ListPending(ctx context.Context) ([]model.RefundRequest, error) {
	return s.refunds.ListPending(ctx)
}

// RefundVenueUnits refunds every open paid unit of a venue, used when
// the venue is deactivated.  Units are processed independently; one
// failure is counted and the batch continues.
func (s *RefundService) RefundVenueUnits(ctx context.Context, venueID uint64) (processed, failed int, err error) {
	units, err := s.units.ListRefundableByVenue(ctx, venueID)
	if err != nil {
		return 0, 0, err
	}
	for _, u := range units {
		if _, err := s.Request(ctx, u.ID, 0, "venue deactivated", false); err != nil {
			log.Printf("venue refund: unit %d failed: %v", u.ID, err)
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}

// afterProcessed fires the side effects of a processed refund: the
// ledger entry reversing the processed value, the credit-note document
// recording it, and the customer notification.  All three run for
// every processed outcome regardless of whether the value moved as
// cash or store credit.  The refund is already committed, so every
// failure here is logged and swallowed rather than propagated.
func (s *RefundService) afterProcessed(ctx context.Context, rr model.RefundRequest, unit model.RedeemableUnit) {
	gross := rr.RefundCents + rr.CreditCents
	err := s.ledger.Append(ctx, model.LedgerEntry{
		ReferenceID: unit.ID,
		RefType:     model.LedgerRefUnit,
		GrossCents:  -gross,
	})
	if err != nil {
		log.Printf("refund %d: ledger append failed: %v", rr.ID, err)
	}
	docID, err := s.credits.CreateCreditNote(ctx, unit.ID, unit.UserID, gross, rr.Reason)
	if err != nil {
		log.Printf("refund %d: credit note failed: %v", rr.ID, err)
	} else if rr.CreditCents > 0 {
		ev := queue.NewNotifyEvent(unit.UserID, queue.EventCreditIssued, map[string]string{
			"unit_code":    unit.Code,
			"credit_cents": strconv.FormatInt(rr.CreditCents, 10),
			"document_id":  docID,
		})
		if err := s.notify.Publish(ctx, ev); err != nil {
			log.Printf("refund %d: notify publish failed: %v", rr.ID, err)
		}
	}
	ev := queue.NewNotifyEvent(unit.UserID, queue.EventRefundProcessed, map[string]string{
		"unit_code":    unit.Code,
		"kind":         string(rr.Kind),
		"refund_cents": strconv.FormatInt(rr.RefundCents, 10),
		"credit_cents": strconv.FormatInt(rr.CreditCents, 10),
	})
	if err := s.notify.Publish(ctx, ev); err != nil {
		log.Printf("refund %d: notify publish failed: %v", rr.ID, err)
	}
}
