// Package queue defines the notification events exchanged over the
// message broker and the background consumer that drains them.
package queue

import "github.com/google/uuid"

// Notification event types.
const (
	EventReservationCancelled = "reservation.cancelled"
	EventReservationStatus    = "reservation.status_changed"
	EventUnitRedeemed         = "unit.redeemed"
	EventTicketScanned        = "ticket.scanned"
	EventRefundProcessed      = "refund.processed"
	EventCreditIssued         = "credit.issued"
)

// NotifyEvent is the envelope published to the notify.events queue.
// Vars carries event-type-specific template variables; downstream
// consumers render or route on EventType without querying the primary
// database.
type NotifyEvent struct {
	EventID   string            `json:"event_id"`
	UserID    uint64            `json:"user_id"`
	EventType string            `json:"event_type"`
	Vars      map[string]string `json:"vars"`
	CreatedAt string            `json:"created_at"`
}

// NewNotifyEvent builds an envelope with a fresh event ID.
func NewNotifyEvent(userID uint64, eventType string, vars map[string]string) NotifyEvent {
	return NotifyEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		EventType: eventType,
		Vars:      vars,
	}
}
