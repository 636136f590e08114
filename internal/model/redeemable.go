package model

import (
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
)

// Unit kinds.  SINGLE and MULTI back prepaid bundles; SEASON is a
// time-boxed seasonal-offer ticket bound to a booked slot.
const (
	UnitKindSingle = "SINGLE"
	UnitKindMulti  = "MULTI"
	UnitKindSeason = "SEASON"
)

// RedeemableUnit is one consumable instance of value owned by a
// customer.  It is created on confirmed payment, decremented by the
// redemption flow, and closed out by refund/credit or natural expiry.
//
// Fields:
//  ID              – primary key identifier.
//  Code            – public code printed on the voucher/ticket.
//  UserID          – owning customer.
//  VenueID         – venue the unit is redeemable at.
//  Kind            – SINGLE, MULTI or SEASON.
//  Status          – lifecycle unit status.
//  PriceCents      – full purchase price in cents.
//  Paid            – whether payment completed.
//  TotalUses       – configured number of uses.
//  UsesRemaining   – uses still available, 0..TotalUses.
//  ValidFrom       – start of validity (nullable).
//  ValidUntil      – end of validity (nullable; null = no expiry).
//  AllowedWeekdays – CSV of permitted weekdays ("Mon,Tue"), empty = any.
//  WindowStart     – daily window start "HH:MM" (nullable).
//  WindowEnd       – daily window end "HH:MM" (nullable).
//  SlotAt          – booked slot for SEASON tickets (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – timestamp of the last mutation.
type RedeemableUnit struct {
	ID              uint64               // redeemable_units.id
	Code            string               // redeemable_units.code
	UserID          uint64               // redeemable_units.user_id
	VenueID         uint64               // redeemable_units.venue_id
	Kind            string               // redeemable_units.kind
	Status          lifecycle.UnitStatus // redeemable_units.status
	PriceCents      int64                // redeemable_units.price_cents
	Paid            bool                 // redeemable_units.paid
	TotalUses       int                  // redeemable_units.total_uses
	UsesRemaining   int                  // redeemable_units.uses_remaining
	ValidFrom       *time.Time           // redeemable_units.valid_from (nullable)
	ValidUntil      *time.Time           // redeemable_units.valid_until (nullable)
	AllowedWeekdays string               // redeemable_units.allowed_weekdays (CSV)
	WindowStart     *string              // redeemable_units.window_start (nullable "HH:MM")
	WindowEnd       *string              // redeemable_units.window_end (nullable "HH:MM")
	SlotAt          *time.Time           // redeemable_units.slot_at (nullable)
	CreatedAt       time.Time            // redeemable_units.created_at
	UpdatedAt       time.Time            // redeemable_units.updated_at
}

// RedemptionRecord is immutable evidence that one use of a unit was
// consumed.  Records are appended, never mutated, and their sequence
// numbers within a unit are strictly increasing and contiguous.
//
// Fields:
//  ID         – primary key identifier.
//  UnitID     – owning redeemable unit.
//  SeqNo      – sequence number within the unit, 1..total_uses.
//  RedeemedAt – when the use was consumed.
//  ActorID    – staff member who performed the redemption.
//  Note       – free-text note from the counter.
type RedemptionRecord struct {
	ID         uint64    // redemption_records.id
	UnitID     uint64    // redemption_records.unit_id
	SeqNo      int       // redemption_records.seq_no
	RedeemedAt time.Time // redemption_records.redeemed_at
	ActorID    uint64    // redemption_records.actor_id
	Note       string    // redemption_records.note
}

// TicketScan records one scan attempt against a SEASON ticket.  A
// valid scan permanently blocks re-validation of the same ticket.
//
// Fields:
//  ID        – primary key identifier.
//  UnitID    – scanned unit.
//  ScannedAt – when the scan happened.
//  ActorID   – staff member who scanned.
//  Valid     – whether the scan was accepted.
type TicketScan struct {
	ID        uint64    // ticket_scans.id
	UnitID    uint64    // ticket_scans.unit_id
	ScannedAt time.Time // ticket_scans.scanned_at
	ActorID   uint64    // ticket_scans.actor_id
	Valid     bool      // ticket_scans.valid
}
