package lifecycle

import (
	"testing"
	"time"
)

// The classifier is a pure step function of the hour gap between the
// event and the cancellation request.
func TestClassifyCancellation(t *testing.T) {
	event := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)
	tests := []struct {
		hoursBefore float64
		want        CancellationTier
	}{
		{34, TierFree},
		{25, TierFree},
		{24, TierLate}, // exactly 24h is late, free needs strictly more
		{18, TierLate},
		{13, TierLate},
		{12, TierVeryLate},
		{6, TierVeryLate},
		{4, TierVeryLate},
		{3, TierBlocked},
		{1, TierBlocked},
		{0, TierBlocked},
		{-2, TierBlocked}, // cancelling after the reservation time
	}
	for _, tt := range tests {
		cancel := event.Add(-time.Duration(tt.hoursBefore * float64(time.Hour)))
		if got := ClassifyCancellation(event, cancel); got != tt.want {
			t.Errorf("ClassifyCancellation(h=%v) = %s, want %s", tt.hoursBefore, got, tt.want)
		}
	}
}

func TestClassifyCancellationFractionalBoundaries(t *testing.T) {
	event := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)
	// A minute past each threshold lands in the lighter tier.
	cases := []struct {
		ahead time.Duration
		want  CancellationTier
	}{
		{24*time.Hour + time.Minute, TierFree},
		{12*time.Hour + time.Minute, TierLate},
		{3*time.Hour + time.Minute, TierVeryLate},
		{2*time.Hour + 59*time.Minute, TierBlocked},
	}
	for _, tt := range cases {
		if got := ClassifyCancellation(event, event.Add(-tt.ahead)); got != tt.want {
			t.Errorf("ClassifyCancellation(ahead=%s) = %s, want %s", tt.ahead, got, tt.want)
		}
	}
}
