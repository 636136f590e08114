package lifecycle

// ReservationStatus enumerates every state a reservation can be in.
// Values are stored verbatim in the reservations.status column, so
// they must never be renamed once written.
type ReservationStatus string

const (
	StatusRequested         ReservationStatus = "REQUESTED"
	StatusPendingValidation ReservationStatus = "PENDING_VALIDATION"
	StatusConfirmed         ReservationStatus = "CONFIRMED"
	StatusWaitlist          ReservationStatus = "WAITLIST"
	StatusPendingWaitlist   ReservationStatus = "PENDING_WAITLIST"
	StatusOnHold            ReservationStatus = "ON_HOLD"
	StatusDepositRequested  ReservationStatus = "DEPOSIT_REQUESTED"
	StatusDepositPaid       ReservationStatus = "DEPOSIT_PAID"
	StatusConsumed          ReservationStatus = "CONSUMED"
	// StatusConsumedDefault marks a reservation auto-closed as honoured
	// without an explicit confirmation by staff.
	StatusConsumedDefault  ReservationStatus = "CONSUMED_DEFAULT"
	StatusNoShow           ReservationStatus = "NO_SHOW"
	StatusNoShowConfirmed  ReservationStatus = "NO_SHOW_CONFIRMED"
	StatusNoShowDisputed   ReservationStatus = "NO_SHOW_DISPUTED"
	StatusRefused          ReservationStatus = "REFUSED"
	StatusExpired          ReservationStatus = "EXPIRED"
	StatusCancelledByUser  ReservationStatus = "CANCELLED_BY_USER"
	StatusCancelledByVenue ReservationStatus = "CANCELLED_BY_VENUE"
	// StatusCancelledWaitlist closes a reservation whose waitlist spot
	// expired before it could be promoted.
	StatusCancelledWaitlist ReservationStatus = "CANCELLED_WAITLIST"
)

// cancellationVariants are the three terminal cancellation statuses.
// Kept as a slice so the transition table can splice them in.
var cancellationVariants = []ReservationStatus{
	StatusCancelledByUser,
	StatusCancelledByVenue,
	StatusCancelledWaitlist,
}

// CancellationVariants returns a copy of the cancellation statuses.
func CancellationVariants() []ReservationStatus {
	out := make([]ReservationStatus, len(cancellationVariants))
	copy(out, cancellationVariants)
	return out
}

// allowedTransitions defines, per current status, the set of target
// statuses a reservation may move to.  Self-transitions are permitted
// for every status (including terminal ones) as a no-op confirmation
// and are handled in CanTransition rather than listed here.  Terminal
// statuses map to an empty slice.
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	StatusRequested: withCancellations(
		StatusConfirmed, StatusRefused, StatusWaitlist, StatusOnHold, StatusExpired,
	),
	StatusPendingValidation: withCancellations(
		StatusConfirmed, StatusRefused, StatusWaitlist, StatusOnHold, StatusExpired,
	),
	StatusConfirmed: withCancellations(
		StatusConsumed, StatusConsumedDefault, StatusNoShow, StatusDepositRequested,
	),
	StatusWaitlist: withCancellations(
		StatusRequested, StatusConfirmed, StatusPendingWaitlist,
	),
	// A pending waitlist spot must be promoted through REQUESTED or
	// WAITLIST; it may not jump straight to CONFIRMED.
	StatusPendingWaitlist: withCancellations(
		StatusRequested, StatusWaitlist,
	),
	StatusOnHold: withCancellations(
		StatusConfirmed, StatusRefused, StatusExpired,
	),
	// Payment must arrive before confirmation.
	StatusDepositRequested: withCancellations(
		StatusDepositPaid, StatusExpired,
	),
	// Deposit forfeiture on user cancellation is settled elsewhere, so
	// CANCELLED_BY_USER is deliberately absent here.
	StatusDepositPaid: {
		StatusConfirmed, StatusConsumed, StatusConsumedDefault, StatusNoShow,
		StatusCancelledByVenue,
	},
	StatusNoShow: {
		StatusNoShowConfirmed, StatusNoShowDisputed,
	},
	// A dispute either sticks (confirmed no-show) or is upheld in the
	// customer's favour (counted as honoured).
	StatusNoShowDisputed: {
		StatusNoShowConfirmed, StatusConsumed,
	},
	// Terminal statuses.
	StatusConsumed:          {},
	StatusConsumedDefault:   {},
	StatusNoShowConfirmed:   {},
	StatusRefused:           {},
	StatusExpired:           {},
	StatusCancelledByUser:   {},
	StatusCancelledByVenue:  {},
	StatusCancelledWaitlist: {},
}

// withCancellations appends the three cancellation variants to a
// target list; most non-terminal statuses may be cancelled.
func withCancellations(targets ...ReservationStatus) []ReservationStatus {
	return append(targets, cancellationVariants...)
}

// CanTransition reports whether a reservation currently in `from` may
// move to `to`.  A self-transition is always allowed, even from a
// terminal status: it confirms the current state without changing it.
// Unknown statuses permit nothing but self.
func CanTransition(from, to ReservationStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a reason-coded error when the transition
// is not allowed, nil otherwise.  Rejection happens before any
// mutation: callers must not touch state when an error is returned.
func ValidateTransition(from, to ReservationStatus) error {
	if !CanTransition(from, to) {
		return reject(ReasonInvalidTransition, "cannot move reservation from %s to %s", from, to)
	}
	return nil
}

// IsTerminal reports whether a status permits no transition except a
// no-op self-transition.
func IsTerminal(s ReservationStatus) bool {
	allowed, known := allowedTransitions[s]
	return known && len(allowed) == 0
}

// Occupies reports whether a reservation in this status still counts
// against the venue's capacity for its slot.
func Occupies(s ReservationStatus) bool {
	switch s {
	case StatusRequested, StatusPendingValidation, StatusConfirmed,
		StatusOnHold, StatusDepositRequested, StatusDepositPaid:
		return true
	}
	return false
}

// Statuses returns every known reservation status.  Useful for
// exhaustive checks in callers and tests.
func Statuses() []ReservationStatus {
	out := make([]ReservationStatus, 0, len(allowedTransitions))
	for s := range allowedTransitions {
		out = append(out, s)
	}
	return out
}
