package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
	"github.com/reserbit/venue-lifecycle/internal/queue"
)

// fixedNow is a Wednesday at 18:00 UTC.
var fixedNow = time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func bundleUnit(id uint64, uses, remaining int) model.RedeemableUnit {
	return model.RedeemableUnit{
		ID:            id,
		Code:          "BNDL-1",
		UserID:        7,
		VenueID:       3,
		Kind:          model.UnitKindMulti,
		Status:        lifecycle.UnitPurchased,
		PriceCents:    100000,
		Paid:          true,
		TotalUses:     uses,
		UsesRemaining: remaining,
	}
}

func newRedemptionFixture(units ...model.RedeemableUnit) (*RedemptionService, *fakeUnitStore, *fakeNotifier) {
	store := newFakeUnitStore(units...)
	notify := &fakeNotifier{}
	svc := NewRedemptionService(store, fakeTxRunner{}, notify)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, notify
}

func TestRedeemHappyPath(t *testing.T) {
	svc, store, notify := newRedemptionFixture(bundleUnit(1, 5, 3))

	unit, cons, err := svc.Redeem(context.Background(), 1, 42, "counter 2")
	require.NoError(t, err)

	assert.Equal(t, 3, cons.UseNumber)
	assert.Equal(t, 2, cons.UsesRemaining)
	assert.Equal(t, lifecycle.UnitPartiallyConsumed, unit.Status)

	require.Len(t, store.records, 1)
	assert.Equal(t, 3, store.records[0].SeqNo)
	assert.Equal(t, uint64(42), store.records[0].ActorID)
	assert.Equal(t, "counter 2", store.records[0].Note)

	assert.Equal(t, 2, store.units[1].UsesRemaining)
	assert.Equal(t, lifecycle.UnitPartiallyConsumed, store.units[1].Status)

	require.Len(t, notify.events, 1)
	assert.Equal(t, queue.EventUnitRedeemed, notify.events[0].EventType)
	assert.Equal(t, uint64(7), notify.events[0].UserID)
}

func TestRedeemLastUseConsumesUnit(t *testing.T) {
	svc, store, _ := newRedemptionFixture(bundleUnit(1, 5, 1))

	_, cons, err := svc.Redeem(context.Background(), 1, 42, "")
	require.NoError(t, err)

	assert.Equal(t, 5, cons.UseNumber)
	assert.Equal(t, 0, cons.UsesRemaining)
	assert.Equal(t, lifecycle.UnitConsumed, store.units[1].Status)
}

func TestRedeemRejectionLeavesUnitUntouched(t *testing.T) {
	unit := bundleUnit(1, 5, 0)
	svc, store, notify := newRedemptionFixture(unit)

	_, _, err := svc.Redeem(context.Background(), 1, 42, "")
	require.Error(t, err)
	assert.Equal(t, lifecycle.ReasonNoUsesLeft, lifecycle.ReasonOf(err))

	assert.Equal(t, unit, store.units[1])
	assert.Empty(t, store.records)
	assert.Empty(t, notify.events)
}

func TestRedeemExpiredUnit(t *testing.T) {
	unit := bundleUnit(1, 5, 3)
	unit.ValidUntil = ptrTime(fixedNow.Add(-time.Hour))
	svc, store, _ := newRedemptionFixture(unit)

	_, _, err := svc.Redeem(context.Background(), 1, 42, "")
	require.Error(t, err)
	assert.Equal(t, lifecycle.ReasonExpired, lifecycle.ReasonOf(err))
	assert.Empty(t, store.records)
}

func TestRedeemNotifyFailureDoesNotFailRedemption(t *testing.T) {
	svc, store, notify := newRedemptionFixture(bundleUnit(1, 5, 3))
	notify.err = errBroken

	_, _, err := svc.Redeem(context.Background(), 1, 42, "")
	require.NoError(t, err)
	assert.Equal(t, 2, store.units[1].UsesRemaining)
}

func seasonTicket(id uint64, slotAt time.Time) model.RedeemableUnit {
	return model.RedeemableUnit{
		ID:            id,
		Code:          "SEAS-1",
		UserID:        7,
		VenueID:       3,
		Kind:          model.UnitKindSeason,
		Status:        lifecycle.UnitPurchased,
		PriceCents:    40000,
		Paid:          true,
		TotalUses:     1,
		UsesRemaining: 1,
		SlotAt:        ptrTime(slotAt),
	}
}

func TestScanWithinToleranceConsumesTicket(t *testing.T) {
	svc, store, notify := newRedemptionFixture(seasonTicket(2, fixedNow.Add(90*time.Minute)))

	unit, err := svc.Scan(context.Background(), 2, 42)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.UnitConsumed, unit.Status)

	require.Len(t, store.scans, 1)
	assert.True(t, store.scans[0].Valid)
	assert.Equal(t, lifecycle.UnitConsumed, store.units[2].Status)

	// Consuming the ticket leaves a redemption record, same as a
	// counter redemption of a bundle.
	require.Len(t, store.records, 1)
	assert.Equal(t, 1, store.records[0].SeqNo)
	assert.Equal(t, uint64(42), store.records[0].ActorID)

	require.Len(t, notify.events, 1)
	assert.Equal(t, queue.EventTicketScanned, notify.events[0].EventType)
}

func TestScanOutsideToleranceIsRecordedAndRejected(t *testing.T) {
	svc, store, _ := newRedemptionFixture(seasonTicket(2, fixedNow.Add(3*time.Hour)))

	_, err := svc.Scan(context.Background(), 2, 42)
	require.Error(t, err)
	assert.Equal(t, lifecycle.ReasonInvalidTime, lifecycle.ReasonOf(err))

	// The failed attempt is on record but the ticket is untouched and
	// nothing was redeemed.
	require.Len(t, store.scans, 1)
	assert.False(t, store.scans[0].Valid)
	assert.Equal(t, lifecycle.UnitPurchased, store.units[2].Status)
	assert.Empty(t, store.records)
}

func TestScanTwiceRejectsSecondAttempt(t *testing.T) {
	svc, store, _ := newRedemptionFixture(seasonTicket(2, fixedNow))

	_, err := svc.Scan(context.Background(), 2, 42)
	require.NoError(t, err)

	// The unit is consumed after the first scan, so rebuild a scannable
	// state to prove the prior valid scan alone blocks re-validation.
	u := store.units[2]
	u.Status = lifecycle.UnitPurchased
	u.UsesRemaining = 1
	store.units[2] = u

	_, err = svc.Scan(context.Background(), 2, 42)
	require.Error(t, err)
	assert.Equal(t, lifecycle.ReasonAlreadyUsed, lifecycle.ReasonOf(err))
}

func TestScanRejectsNonSeasonUnit(t *testing.T) {
	svc, _, _ := newRedemptionFixture(bundleUnit(1, 5, 3))

	_, err := svc.Scan(context.Background(), 1, 42)
	require.Error(t, err)
	assert.Equal(t, lifecycle.ReasonInvalidStatus, lifecycle.ReasonOf(err))
}
