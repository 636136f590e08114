package lifecycle

import "time"

// CancellationTier buckets a cancellation by how far ahead of the
// event it arrives.  The tier drives penalty recording and, for
// BLOCKED, rejection of the cancellation itself.
type CancellationTier string

const (
	// TierFree: more than 24 hours ahead, no penalty.
	TierFree CancellationTier = "FREE"
	// TierLate: more than 12 and up to 24 hours ahead.
	TierLate CancellationTier = "LATE"
	// TierVeryLate: more than 3 and up to 12 hours ahead.
	TierVeryLate CancellationTier = "VERY_LATE"
	// TierBlocked: 3 hours or less ahead, including at or after the
	// event time.  Cancellation is refused in this window.
	TierBlocked CancellationTier = "BLOCKED"
)

// Cancellation window thresholds, in hours before the event.
const (
	freeCancelHours     = 24
	lateCancelHours     = 12
	veryLateCancelHours = 3
)

// ClassifyCancellation maps the gap between a reservation's start and
// the moment the cancellation is requested onto a severity tier.  The
// gap may be fractional or negative (cancelling after the start);
// boundaries are inclusive on the more severe side, so exactly 24h is
// LATE, exactly 12h is VERY_LATE and exactly 3h is BLOCKED.
func ClassifyCancellation(eventTime, cancelTime time.Time) CancellationTier {
	h := eventTime.Sub(cancelTime).Hours()
	switch {
	case h > freeCancelHours:
		return TierFree
	case h > lateCancelHours:
		return TierLate
	case h > veryLateCancelHours:
		return TierVeryLate
	default:
		return TierBlocked
	}
}
