package lifecycle

import (
	"testing"
	"time"
)

func ts(h, m int) time.Time {
	// A Wednesday.
	return time.Date(2025, 6, 11, h, m, 0, 0, time.UTC)
}

func TestConsumeSingleUse(t *testing.T) {
	cred := Credential{Status: UnitPurchased, SingleUse: true, TotalUses: 1, UsesRemaining: 1}
	got, err := Consume(cred, ts(12, 0))
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.UseNumber != 1 || got.UsesRemaining != 0 || got.NewStatus != UnitConsumed {
		t.Errorf("Consume = %+v, want use 1, remaining 0, CONSUMED", got)
	}
}

// A single-use unit is spent outright even when the catalog carries a
// larger configured total.
func TestConsumeSingleUseIgnoresTotal(t *testing.T) {
	cred := Credential{Status: UnitPurchased, SingleUse: true, TotalUses: 3, UsesRemaining: 3}
	got, err := Consume(cred, ts(12, 0))
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.UsesRemaining != 0 || got.NewStatus != UnitConsumed {
		t.Errorf("single-use unit not fully spent: %+v", got)
	}
}

func TestConsumeMultiUse(t *testing.T) {
	// Third use of a five-use bundle.
	cred := Credential{Status: UnitPartiallyConsumed, TotalUses: 5, UsesRemaining: 3}
	got, err := Consume(cred, ts(12, 0))
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.UseNumber != 3 || got.UsesRemaining != 2 || got.NewStatus != UnitPartiallyConsumed {
		t.Errorf("Consume = %+v, want use 3, remaining 2, PARTIALLY_CONSUMED", got)
	}

	// Last remaining use closes the unit.
	cred.UsesRemaining = 1
	got, err = Consume(cred, ts(12, 0))
	if err != nil {
		t.Fatalf("Consume last use: %v", err)
	}
	if got.UseNumber != 5 || got.UsesRemaining != 0 || got.NewStatus != UnitConsumed {
		t.Errorf("Consume last use = %+v, want use 5, remaining 0, CONSUMED", got)
	}
}

func TestConsumeRejections(t *testing.T) {
	until := ts(18, 0)
	window := &ClockWindow{StartMinute: 11 * 60, EndMinute: 14 * 60}
	tests := []struct {
		name string
		cred Credential
		at   time.Time
		want Reason
	}{
		{
			"already consumed",
			Credential{Status: UnitConsumed, TotalUses: 1},
			ts(12, 0), ReasonAlreadyConsumed,
		},
		{
			"refunded",
			Credential{Status: UnitRefunded, TotalUses: 1, UsesRemaining: 1},
			ts(12, 0), ReasonAlreadyRefunded,
		},
		{
			"credited",
			Credential{Status: UnitCredited, TotalUses: 1, UsesRemaining: 1},
			ts(12, 0), ReasonAlreadyCredited,
		},
		{
			"expired status",
			Credential{Status: UnitExpired, TotalUses: 1, UsesRemaining: 1},
			ts(12, 0), ReasonExpired,
		},
		{
			"past validity end",
			Credential{Status: UnitPurchased, TotalUses: 1, UsesRemaining: 1, ValidUntil: &until},
			ts(19, 0), ReasonExpired,
		},
		{
			"wrong weekday",
			Credential{Status: UnitPurchased, TotalUses: 1, UsesRemaining: 1,
				Weekdays: []time.Weekday{time.Monday, time.Tuesday}},
			ts(12, 0), ReasonInvalidDay, // the fixture date is a Wednesday
		},
		{
			"outside clock window",
			Credential{Status: UnitPurchased, TotalUses: 1, UsesRemaining: 1, Window: window},
			ts(16, 0), ReasonInvalidTime,
		},
		{
			"no uses left",
			Credential{Status: UnitPartiallyConsumed, TotalUses: 5, UsesRemaining: 0},
			ts(12, 0), ReasonNoUsesLeft,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Consume(tt.cred, tt.at)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if got := ReasonOf(err); got != tt.want {
				t.Errorf("reason = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConsumeClockWindowInclusive(t *testing.T) {
	window := &ClockWindow{StartMinute: 11 * 60, EndMinute: 14 * 60}
	cred := Credential{Status: UnitPurchased, TotalUses: 2, UsesRemaining: 2, Window: window}
	for _, at := range []time.Time{ts(11, 0), ts(14, 0)} {
		if _, err := Consume(cred, at); err != nil {
			t.Errorf("window boundaries are inclusive, got %v at %s", err, at)
		}
	}
}

func TestConsumeWrappingWindow(t *testing.T) {
	// 22:00 through 02:00 next day.
	window := &ClockWindow{StartMinute: 22 * 60, EndMinute: 2 * 60}
	cred := Credential{Status: UnitPurchased, TotalUses: 2, UsesRemaining: 2, Window: window}
	if _, err := Consume(cred, ts(23, 30)); err != nil {
		t.Errorf("23:30 should fall in a 22:00-02:00 window, got %v", err)
	}
	if _, err := Consume(cred, ts(1, 0)); err != nil {
		t.Errorf("01:00 should fall in a 22:00-02:00 window, got %v", err)
	}
	if _, err := Consume(cred, ts(12, 0)); ReasonOf(err) != ReasonInvalidTime {
		t.Errorf("noon should be outside a 22:00-02:00 window, got %v", err)
	}
}

func TestValidateScan(t *testing.T) {
	slot := ts(19, 0)
	if err := ValidateScan(slot, ts(18, 0), false); err != nil {
		t.Errorf("scan 1h early should pass, got %v", err)
	}
	if err := ValidateScan(slot, ts(21, 0), false); err != nil {
		t.Errorf("scan exactly 2h late should pass, got %v", err)
	}
	if err := ValidateScan(slot, ts(16, 30), false); ReasonOf(err) != ReasonInvalidTime {
		t.Errorf("scan 2.5h early should fail invalid_time, got %v", err)
	}
	if err := ValidateScan(slot, ts(19, 30), true); ReasonOf(err) != ReasonAlreadyUsed {
		t.Errorf("re-scan should fail already_used, got %v", err)
	}
}
