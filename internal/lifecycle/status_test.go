package lifecycle

import "testing"

func TestCanTransitionAllowedPairs(t *testing.T) {
	tests := []struct {
		name string
		from ReservationStatus
		to   ReservationStatus
		want bool
	}{
		// From REQUESTED / PENDING_VALIDATION.
		{"requested to confirmed", StatusRequested, StatusConfirmed, true},
		{"requested to refused", StatusRequested, StatusRefused, true},
		{"requested to waitlist", StatusRequested, StatusWaitlist, true},
		{"requested to on hold", StatusRequested, StatusOnHold, true},
		{"requested to expired", StatusRequested, StatusExpired, true},
		{"requested to cancelled by user", StatusRequested, StatusCancelledByUser, true},
		{"requested to cancelled by venue", StatusRequested, StatusCancelledByVenue, true},
		{"requested to cancelled waitlist", StatusRequested, StatusCancelledWaitlist, true},
		{"requested cannot be consumed directly", StatusRequested, StatusConsumed, false},
		{"requested cannot no-show directly", StatusRequested, StatusNoShow, false},
		{"pending validation to confirmed", StatusPendingValidation, StatusConfirmed, true},
		{"pending validation cannot be consumed directly", StatusPendingValidation, StatusConsumed, false},
		{"pending validation cannot no-show directly", StatusPendingValidation, StatusNoShow, false},

		// From CONFIRMED.
		{"confirmed to consumed", StatusConfirmed, StatusConsumed, true},
		{"confirmed to consumed default", StatusConfirmed, StatusConsumedDefault, true},
		{"confirmed to no show", StatusConfirmed, StatusNoShow, true},
		{"confirmed to deposit requested", StatusConfirmed, StatusDepositRequested, true},
		{"confirmed to cancelled by user", StatusConfirmed, StatusCancelledByUser, true},
		{"confirmed cannot be refused", StatusConfirmed, StatusRefused, false},

		// Waitlist flows.
		{"waitlist to requested", StatusWaitlist, StatusRequested, true},
		{"waitlist to confirmed", StatusWaitlist, StatusConfirmed, true},
		{"waitlist to pending waitlist", StatusWaitlist, StatusPendingWaitlist, true},
		{"waitlist to cancelled waitlist", StatusWaitlist, StatusCancelledWaitlist, true},
		{"pending waitlist to requested", StatusPendingWaitlist, StatusRequested, true},
		{"pending waitlist to waitlist", StatusPendingWaitlist, StatusWaitlist, true},
		{"pending waitlist cannot jump to confirmed", StatusPendingWaitlist, StatusConfirmed, false},

		// On hold.
		{"on hold to confirmed", StatusOnHold, StatusConfirmed, true},
		{"on hold to refused", StatusOnHold, StatusRefused, true},
		{"on hold to expired", StatusOnHold, StatusExpired, true},
		{"on hold cannot be consumed directly", StatusOnHold, StatusConsumed, false},

		// Deposit flow.
		{"deposit requested to deposit paid", StatusDepositRequested, StatusDepositPaid, true},
		{"deposit requested to expired", StatusDepositRequested, StatusExpired, true},
		{"deposit requested to cancelled by user", StatusDepositRequested, StatusCancelledByUser, true},
		{"deposit requested cannot skip to confirmed", StatusDepositRequested, StatusConfirmed, false},
		{"deposit paid to confirmed", StatusDepositPaid, StatusConfirmed, true},
		{"deposit paid to consumed", StatusDepositPaid, StatusConsumed, true},
		{"deposit paid to no show", StatusDepositPaid, StatusNoShow, true},
		{"deposit paid to cancelled by venue", StatusDepositPaid, StatusCancelledByVenue, true},
		{"deposit paid cannot be cancelled by user", StatusDepositPaid, StatusCancelledByUser, false},

		// No-show dispute flow.
		{"no show to confirmed no show", StatusNoShow, StatusNoShowConfirmed, true},
		{"no show to disputed", StatusNoShow, StatusNoShowDisputed, true},
		{"no show cannot be cancelled", StatusNoShow, StatusCancelledByUser, false},
		{"disputed to confirmed no show", StatusNoShowDisputed, StatusNoShowConfirmed, true},
		{"disputed upheld to consumed", StatusNoShowDisputed, StatusConsumed, true},
		{"disputed cannot be cancelled", StatusNoShowDisputed, StatusCancelledByVenue, false},

		// Unknown status permits only self.
		{"unknown status goes nowhere", ReservationStatus("BOGUS"), StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// Terminal statuses permit no transition except self; self-transition
// is allowed from every status.
func TestTerminalClosure(t *testing.T) {
	terminals := []ReservationStatus{
		StatusConsumed, StatusConsumedDefault, StatusNoShowConfirmed,
		StatusRefused, StatusExpired,
		StatusCancelledByUser, StatusCancelledByVenue, StatusCancelledWaitlist,
	}
	for _, term := range terminals {
		if !IsTerminal(term) {
			t.Errorf("IsTerminal(%s) = false, want true", term)
		}
		for _, target := range Statuses() {
			got := CanTransition(term, target)
			want := target == term
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", term, target, got, want)
			}
		}
	}
	for _, s := range Statuses() {
		if !CanTransition(s, s) {
			t.Errorf("self-transition from %s should be allowed", s)
		}
	}
}

func TestValidateTransitionReason(t *testing.T) {
	err := ValidateTransition(StatusConfirmed, StatusRefused)
	if err == nil {
		t.Fatal("expected error for confirmed -> refused")
	}
	if ReasonOf(err) != ReasonInvalidTransition {
		t.Errorf("reason = %s, want %s", ReasonOf(err), ReasonInvalidTransition)
	}
	if err := ValidateTransition(StatusConfirmed, StatusConsumed); err != nil {
		t.Errorf("confirmed -> consumed should be legal, got %v", err)
	}
}

// Every cancellation variant is terminal, and every non-terminal
// status can reach at least one of them (cancellation is never walled
// off while a reservation is still live).
func TestCancellationVariants(t *testing.T) {
	variants := CancellationVariants()
	if len(variants) != 3 {
		t.Fatalf("got %d cancellation variants, want 3", len(variants))
	}
	for _, v := range variants {
		if !IsTerminal(v) {
			t.Errorf("IsTerminal(%s) = false, want true", v)
		}
	}
	variants[0] = ReservationStatus("MUTATED")
	if CancellationVariants()[0] == "MUTATED" {
		t.Error("CancellationVariants must return a copy")
	}
	for _, s := range Statuses() {
		if IsTerminal(s) || s == StatusNoShow || s == StatusNoShowDisputed {
			continue
		}
		reachable := false
		for _, v := range CancellationVariants() {
			if CanTransition(s, v) {
				reachable = true
				break
			}
		}
		if !reachable {
			t.Errorf("no cancellation variant reachable from %s", s)
		}
	}
}

func TestOccupies(t *testing.T) {
	occupying := []ReservationStatus{
		StatusRequested, StatusPendingValidation, StatusConfirmed,
		StatusOnHold, StatusDepositRequested, StatusDepositPaid,
	}
	for _, s := range occupying {
		if !Occupies(s) {
			t.Errorf("Occupies(%s) = false, want true", s)
		}
	}
	for _, s := range []ReservationStatus{StatusWaitlist, StatusConsumed, StatusCancelledByUser, StatusNoShow} {
		if Occupies(s) {
			t.Errorf("Occupies(%s) = true, want false", s)
		}
	}
}
