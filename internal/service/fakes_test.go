package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
	"github.com/reserbit/venue-lifecycle/internal/queue"
	"github.com/reserbit/venue-lifecycle/internal/repository"
)

// fakeTxRunner runs the transaction body directly.  The fakes below
// ignore the *sql.Tx argument, so passing nil is safe.
type fakeTxRunner struct{}

func (fakeTxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// fakeNotifier records published events and can be told to fail.
type fakeNotifier struct {
	events []queue.NotifyEvent
	err    error
}

func (n *fakeNotifier) Publish(_ context.Context, ev queue.NotifyEvent) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, ev)
	return nil
}

// fakeUnitStore keeps units in memory and mimics the repository's
// compare-and-swap semantics.
type fakeUnitStore struct {
	units     map[uint64]model.RedeemableUnit
	records   []model.RedemptionRecord
	scans     []model.TicketScan
	failGetID uint64 // loading this unit fails, for error-path tests
}

func newFakeUnitStore(units ...model.RedeemableUnit) *fakeUnitStore {
	s := &fakeUnitStore{units: make(map[uint64]model.RedeemableUnit)}
	for _, u := range units {
		s.units[u.ID] = u
	}
	return s
}

func (s *fakeUnitStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (model.RedeemableUnit, error) {
	if s.failGetID != 0 && id == s.failGetID {
		return model.RedeemableUnit{}, errBroken
	}
	u, ok := s.units[id]
	if !ok {
		return model.RedeemableUnit{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUnitStore) ApplyConsumptionTx(_ context.Context, _ *sql.Tx, u model.RedeemableUnit, c lifecycle.Consumption) error {
	cur, ok := s.units[u.ID]
	if !ok || cur.UsesRemaining != u.UsesRemaining || cur.Status != u.Status {
		return repository.ErrConflict
	}
	cur.UsesRemaining = c.UsesRemaining
	cur.Status = c.NewStatus
	s.units[u.ID] = cur
	return nil
}

func (s *fakeUnitStore) AppendRedemptionTx(_ context.Context, _ *sql.Tx, rec model.RedemptionRecord) error {
	for _, r := range s.records {
		if r.UnitID == rec.UnitID && r.SeqNo == rec.SeqNo {
			return repository.ErrConflict
		}
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeUnitStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, from, to lifecycle.UnitStatus) error {
	cur, ok := s.units[id]
	if !ok || cur.Status != from {
		return repository.ErrConflict
	}
	cur.Status = to
	s.units[id] = cur
	return nil
}

func (s *fakeUnitStore) HasValidScanTx(_ context.Context, _ *sql.Tx, unitID uint64) (bool, error) {
	for _, sc := range s.scans {
		if sc.UnitID == unitID && sc.Valid {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUnitStore) RecordScanTx(_ context.Context, _ *sql.Tx, sc model.TicketScan) error {
	s.scans = append(s.scans, sc)
	return nil
}

func (s *fakeUnitStore) ListRefundableByVenue(_ context.Context, venueID uint64) ([]model.RedeemableUnit, error) {
	var out []model.RedeemableUnit
	for _, u := range s.units {
		open := u.Status == lifecycle.UnitPurchased || u.Status == lifecycle.UnitPartiallyConsumed
		if u.VenueID == venueID && u.Paid && open {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeReservationStore keeps reservations in memory.
type fakeReservationStore struct {
	reservations map[uint64]model.Reservation
	nextID       uint64
}

func newFakeReservationStore(rs ...model.Reservation) *fakeReservationStore {
	s := &fakeReservationStore{reservations: make(map[uint64]model.Reservation), nextID: 100}
	for _, r := range rs {
		s.reservations[r.ID] = r
	}
	return s
}

func (s *fakeReservationStore) Create(_ context.Context, res *model.Reservation) error {
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	s.reservations[res.ID] = *res
	return nil
}

func (s *fakeReservationStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return r, nil
}

func (s *fakeReservationStore) GetForUpdateTx(ctx context.Context, _ *sql.Tx, id uint64) (model.Reservation, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeReservationStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, from, to lifecycle.ReservationStatus) error {
	cur, ok := s.reservations[id]
	if !ok || cur.Status != from {
		return repository.ErrConflict
	}
	cur.Status = to
	s.reservations[id] = cur
	return nil
}

func (s *fakeReservationStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeCounterStore records increments per user and column.
type fakeCounterStore struct {
	counts map[uint64]map[string]int
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[uint64]map[string]int)}
}

func (s *fakeCounterStore) bump(userID uint64, column string, delta int) {
	if s.counts[userID] == nil {
		s.counts[userID] = make(map[string]int)
	}
	s.counts[userID][column] += delta
}

func (s *fakeCounterStore) Increment(_ context.Context, userID uint64, column string, delta int) error {
	s.bump(userID, column, delta)
	return nil
}

func (s *fakeCounterStore) IncrementTx(_ context.Context, _ *sql.Tx, userID uint64, column string, delta int) error {
	s.bump(userID, column, delta)
	return nil
}

func (s *fakeCounterStore) Get(_ context.Context, userID uint64) (model.ReliabilityCounters, error) {
	c := model.ReliabilityCounters{UserID: userID}
	m := s.counts[userID]
	c.Honored = m[repository.CounterHonored]
	c.NoShows = m[repository.CounterNoShows]
	c.LateCancellations = m[repository.CounterLateCancellations]
	c.VeryLateCancels = m[repository.CounterVeryLateCancels]
	c.TotalReservations = m[repository.CounterTotalReservations]
	c.ReviewsPosted = m[repository.CounterReviewsPosted]
	c.PaidConversions = m[repository.CounterPaidConversions]
	return c, nil
}

// fakeRefundStore keeps refund requests in memory.
type fakeRefundStore struct {
	refunds map[uint64]model.RefundRequest
	nextID  uint64
}

func newFakeRefundStore() *fakeRefundStore {
	return &fakeRefundStore{refunds: make(map[uint64]model.RefundRequest), nextID: 500}
}

func (s *fakeRefundStore) CreateTx(_ context.Context, _ *sql.Tx, rr *model.RefundRequest) error {
	s.nextID++
	rr.ID = s.nextID
	s.refunds[rr.ID] = *rr
	return nil
}

func (s *fakeRefundStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (model.RefundRequest, error) {
	rr, ok := s.refunds[id]
	if !ok {
		return model.RefundRequest{}, repository.ErrNotFound
	}
	return rr, nil
}

func (s *fakeRefundStore) MarkProcessedTx(_ context.Context, _ *sql.Tx, id uint64, at time.Time) error {
	rr, ok := s.refunds[id]
	if !ok || rr.Status != model.RefundRequested {
		return repository.ErrConflict
	}
	rr.Status = model.RefundProcessed
	rr.ProcessedAt = &at
	s.refunds[id] = rr
	return nil
}

func (s *fakeRefundStore) ListPending(_ context.Context) ([]model.RefundRequest, error) {
	var out []model.RefundRequest
	for _, rr := range s.refunds {
		if rr.Status == model.RefundRequested {
			out = append(out, rr)
		}
	}
	return out, nil
}

// fakeLedger records appended entries and can be told to fail.
type fakeLedger struct {
	entries []model.LedgerEntry
	err     error
}

func (l *fakeLedger) Append(_ context.Context, e model.LedgerEntry) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, e)
	return nil
}

// fakeCreditNotes records issued credit notes.
type fakeCreditNotes struct {
	issued []int64
	err    error
}

func (f *fakeCreditNotes) CreateCreditNote(_ context.Context, _, _ uint64, amountCents int64, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, amountCents)
	return "DOC-1", nil
}

var errBroken = errors.New("broken")
