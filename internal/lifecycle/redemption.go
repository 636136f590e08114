package lifecycle

import "time"

// UnitStatus enumerates the states of a redeemable unit (a prepaid
// bundle use or a seasonal-offer ticket).  Stored verbatim in
// redeemable_units.status.
type UnitStatus string

const (
	UnitPurchased         UnitStatus = "PURCHASED"
	UnitPartiallyConsumed UnitStatus = "PARTIALLY_CONSUMED"
	UnitConsumed          UnitStatus = "CONSUMED"
	UnitExpired           UnitStatus = "EXPIRED"
	UnitRefunded          UnitStatus = "REFUNDED"
	UnitCredited          UnitStatus = "CREDITED"
)

// ClockWindow restricts consumption to a daily time-of-day range,
// inclusive on both ends.  Minutes are counted from local midnight of
// the consumption request; a window may wrap past midnight when End
// is smaller than Start (e.g. 22:00-02:00).
type ClockWindow struct {
	StartMinute int // minutes since midnight, 0..1439
	EndMinute   int // minutes since midnight, 0..1439
}

// contains reports whether the clock time of t falls inside the
// window.  Weekday/time-of-day configuration is evaluated against the
// request's local clock, not UTC.
func (w ClockWindow) contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	if w.StartMinute <= w.EndMinute {
		return m >= w.StartMinute && m <= w.EndMinute
	}
	return m >= w.StartMinute || m <= w.EndMinute
}

// Credential is the generic one-time/multi-use consumable the
// validator decides over.  Both prepaid bundle units and seasonal
// tickets are expressed through it; only the optional predicates
// differ between the two.
type Credential struct {
	Status        UnitStatus
	SingleUse     bool // a single-use unit is fully spent by one redemption
	TotalUses     int
	UsesRemaining int
	ValidUntil    *time.Time     // nil means no expiry
	Weekdays      []time.Weekday // nil or empty means any day
	Window        *ClockWindow   // nil means any time of day
}

// Consumption is the successful outcome of a redemption decision.
// The caller persists it: append a redemption record carrying
// UseNumber, store UsesRemaining and NewStatus on the unit.
type Consumption struct {
	UseNumber     int // sequence number within the unit, 1..TotalUses
	UsesRemaining int
	NewStatus     UnitStatus
}

// Consume decides whether one use of the credential may be spent at
// the given moment.  Preconditions are checked in a fixed order and
// short-circuit on the first failure; on failure nothing may be
// mutated by the caller.
func Consume(cred Credential, at time.Time) (Consumption, error) {
	if err := consumableStatus(cred.Status); err != nil {
		return Consumption{}, err
	}
	if cred.ValidUntil != nil && at.After(*cred.ValidUntil) {
		return Consumption{}, reject(ReasonExpired, "unit validity ended %s", cred.ValidUntil.Format(time.RFC3339))
	}
	if len(cred.Weekdays) > 0 && !weekdayAllowed(cred.Weekdays, at.Weekday()) {
		return Consumption{}, reject(ReasonInvalidDay, "unit cannot be redeemed on %s", at.Weekday())
	}
	if cred.Window != nil && !cred.Window.contains(at) {
		return Consumption{}, reject(ReasonInvalidTime, "unit cannot be redeemed at %02d:%02d", at.Hour(), at.Minute())
	}
	if cred.UsesRemaining <= 0 {
		return Consumption{}, reject(ReasonNoUsesLeft, "no uses left on unit")
	}

	out := Consumption{
		UseNumber:     cred.TotalUses - cred.UsesRemaining + 1,
		UsesRemaining: cred.UsesRemaining - 1,
	}
	// Single-use units are spent outright by their first redemption,
	// whatever total the catalog configured.
	if cred.SingleUse {
		out.UsesRemaining = 0
	}
	if out.UsesRemaining == 0 {
		out.NewStatus = UnitConsumed
	} else {
		out.NewStatus = UnitPartiallyConsumed
	}
	return out, nil
}

// consumableStatus rejects every unit status that does not permit
// consumption, with the reason a caller can surface directly.
func consumableStatus(s UnitStatus) error {
	switch s {
	case UnitPurchased, UnitPartiallyConsumed:
		return nil
	case UnitConsumed:
		return reject(ReasonAlreadyConsumed, "unit is fully consumed")
	case UnitRefunded:
		return reject(ReasonAlreadyRefunded, "unit was refunded")
	case UnitCredited:
		return reject(ReasonAlreadyCredited, "unit was converted to credit")
	case UnitExpired:
		return reject(ReasonExpired, "unit expired")
	default:
		return reject(ReasonInvalidStatus, "unit status %s does not permit redemption", s)
	}
}

func weekdayAllowed(days []time.Weekday, d time.Weekday) bool {
	for _, allowed := range days {
		if allowed == d {
			return true
		}
	}
	return false
}

// ScanTolerance is how far either side of the booked slot a seasonal
// ticket scan is accepted.
const ScanTolerance = 2 * time.Hour

// ValidateScan decides whether a seasonal-offer ticket scan is
// acceptable: the scan must fall within ±ScanTolerance of the booked
// slot, and a prior valid scan permanently blocks re-validation.
func ValidateScan(slotAt, scanAt time.Time, alreadyUsed bool) error {
	if alreadyUsed {
		return reject(ReasonAlreadyUsed, "ticket was already validated")
	}
	diff := scanAt.Sub(slotAt)
	if diff < -ScanTolerance || diff > ScanTolerance {
		return reject(ReasonInvalidTime, "scan outside the %s window around the booked slot", ScanTolerance)
	}
	return nil
}
