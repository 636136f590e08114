package model

import "time"

// Venue is a bookable establishment on the platform.  Deactivating a
// venue triggers the bulk refund of its outstanding redeemable units.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – staff user who manages the venue.
//  Name      – display name.
//  City      – city the venue operates in.
//  Active    – whether the venue accepts bookings and redemptions.
//  CreatedAt – creation timestamp.
type Venue struct {
	ID        uint64    // venues.id
	OwnerID   uint64    // venues.owner_id
	Name      string    // venues.name
	City      string    // venues.city
	Active    bool      // venues.is_active
	CreatedAt time.Time // venues.created_at
}
