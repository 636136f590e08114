// Package lifecycle implements the temporal commerce rules of the
// platform: which status transitions a reservation may take, how a
// cancellation is penalised depending on how close to the event it
// arrives, how a customer's long-run reliability is scored, whether a
// redeemable unit may be consumed right now, and how a refund is
// computed from time-to-expiry.  Everything in this package is pure:
// functions read only their arguments and never touch storage, the
// clock or the network.  Callers load state, ask this package for a
// decision and then persist the outcome.
package lifecycle

import (
	"errors"
	"fmt"
)

// Reason is a stable machine-readable code attached to every rejected
// operation.  Callers branch on the code; the accompanying message is
// for end-user display only and carries no contract.
type Reason string

const (
	ReasonNotFound           Reason = "not_found"
	ReasonNotPaid            Reason = "not_paid"
	ReasonAlreadyConsumed    Reason = "already_consumed"
	ReasonAlreadyRefunded    Reason = "already_refunded"
	ReasonAlreadyCredited    Reason = "already_credited"
	ReasonExpired            Reason = "expired"
	ReasonInvalidDay         Reason = "invalid_day"
	ReasonInvalidTime        Reason = "invalid_time"
	ReasonNoUsesLeft         Reason = "no_uses_left"
	ReasonInvalidStatus      Reason = "invalid_status"
	ReasonAlreadyUsed        Reason = "already_used"
	ReasonCancelWindowClosed Reason = "cancel_window_closed"
	ReasonInvalidTransition  Reason = "invalid_transition"
)

// RejectionError is the discriminated failure result returned by the
// engine.  It is an error so it can flow through ordinary Go error
// returns, but callers are expected to extract the Reason rather than
// match on the text.
type RejectionError struct {
	Reason  Reason
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// reject builds a RejectionError with a formatted display message.
func reject(reason Reason, format string, args ...interface{}) error {
	return &RejectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the stable reason code from an error returned by
// this package.  It returns the empty Reason when err is not a
// rejection (e.g. an infrastructure error wrapped by a caller).
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
