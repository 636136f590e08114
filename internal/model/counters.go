package model

import "time"

// ReliabilityCounters mirrors the reliability_counters table: one row
// per customer, incremented by the booking/billing flows and read as a
// snapshot by the scoring engine.  The engine itself never writes it.
//
// Fields:
//  UserID            – customer the counters belong to (primary key).
//  Honored           – honoured (consumed) reservations.
//  NoShows           – confirmed no-shows.
//  LateCancellations – cancellations in the LATE tier.
//  VeryLateCancels   – cancellations in the VERY_LATE tier.
//  TotalReservations – lifetime reservations ever made.
//  ReviewsPosted     – reviews published.
//  PaidConversions   – free-to-paid conversions.
//  UpdatedAt         – last increment timestamp.
type ReliabilityCounters struct {
	UserID            uint64    // reliability_counters.user_id
	Honored           int       // reliability_counters.honored
	NoShows           int       // reliability_counters.no_shows
	LateCancellations int       // reliability_counters.late_cancellations
	VeryLateCancels   int       // reliability_counters.very_late_cancellations
	TotalReservations int       // reliability_counters.total_reservations
	ReviewsPosted     int       // reliability_counters.reviews_posted
	PaidConversions   int       // reliability_counters.paid_conversions
	UpdatedAt         time.Time // reliability_counters.updated_at
}
