package model

import (
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
)

// Reservation records one party's claim on capacity at a venue for a
// single time slot.  Its status only ever changes through the
// lifecycle transition table; rows are removed by retention policy,
// never by the engine.
//
// Fields:
//  ID              – primary key identifier.
//  VenueID         – venue being booked.
//  UserID          – customer who made the reservation.
//  StartsAt        – scheduled start of the slot (UTC).
//  Status          – lifecycle status (see internal/lifecycle).
//  PartySize       – number of guests.
//  DepositRequired – whether the venue demanded a deposit.
//  DepositPaid     – whether the deposit has been paid.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – timestamp of the last status transition.
type Reservation struct {
	ID              uint64                      // reservations.id
	VenueID         uint64                      // reservations.venue_id
	UserID          uint64                      // reservations.user_id
	StartsAt        time.Time                   // reservations.starts_at
	Status          lifecycle.ReservationStatus // reservations.status
	PartySize       uint32                      // reservations.party_size
	DepositRequired bool                        // reservations.deposit_required
	DepositPaid     bool                        // reservations.deposit_paid
	CreatedAt       time.Time                   // reservations.created_at
	UpdatedAt       time.Time                   // reservations.updated_at
}
