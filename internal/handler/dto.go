package handler

import (
	"time"

	"github.com/reserbit/venue-lifecycle/internal/model"
	"github.com/reserbit/venue-lifecycle/internal/service"
)

// Response shapes returned to clients.  Repository models stay free of
// JSON tags; these are the wire representations.

type reservationResp struct {
	ID              uint64    `json:"id"`
	VenueID         uint64    `json:"venue_id"`
	UserID          uint64    `json:"user_id"`
	StartsAt        time.Time `json:"starts_at"`
	Status          string    `json:"status"`
	PartySize       uint32    `json:"party_size"`
	DepositRequired bool      `json:"deposit_required"`
	DepositPaid     bool      `json:"deposit_paid"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:              r.ID,
		VenueID:         r.VenueID,
		UserID:          r.UserID,
		StartsAt:        r.StartsAt,
		Status:          string(r.Status),
		PartySize:       r.PartySize,
		DepositRequired: r.DepositRequired,
		DepositPaid:     r.DepositPaid,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toReservationResps(rs []model.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservationResp(r))
	}
	return out
}

type unitResp struct {
	ID            uint64     `json:"id"`
	Code          string     `json:"code"`
	VenueID       uint64     `json:"venue_id"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	PriceCents    int64      `json:"price_cents"`
	TotalUses     int        `json:"total_uses"`
	UsesRemaining int        `json:"uses_remaining"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	SlotAt        *time.Time `json:"slot_at,omitempty"`
}

func toUnitResp(u model.RedeemableUnit) unitResp {
	return unitResp{
		ID:            u.ID,
		Code:          u.Code,
		VenueID:       u.VenueID,
		Kind:          u.Kind,
		Status:        string(u.Status),
		PriceCents:    u.PriceCents,
		TotalUses:     u.TotalUses,
		UsesRemaining: u.UsesRemaining,
		ValidUntil:    u.ValidUntil,
		SlotAt:        u.SlotAt,
	}
}

func toUnitResps(us []model.RedeemableUnit) []unitResp {
	out := make([]unitResp, 0, len(us))
	for _, u := range us {
		out = append(out, toUnitResp(u))
	}
	return out
}

type refundResp struct {
	ID          uint64     `json:"id"`
	UnitID      uint64     `json:"unit_id"`
	Status      string     `json:"status"`
	Kind        string     `json:"kind"`
	RefundCents int64      `json:"refund_cents"`
	CreditCents int64      `json:"credit_cents"`
	Reason      string     `json:"reason,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func toRefundResp(rr model.RefundRequest) refundResp {
	return refundResp{
		ID:          rr.ID,
		UnitID:      rr.UnitID,
		Status:      rr.Status,
		Kind:        string(rr.Kind),
		RefundCents: rr.RefundCents,
		CreditCents: rr.CreditCents,
		Reason:      rr.Reason,
		RequestedAt: rr.RequestedAt,
		ProcessedAt: rr.ProcessedAt,
	}
}

func toRefundResps(rs []model.RefundRequest) []refundResp {
	out := make([]refundResp, 0, len(rs))
	for _, rr := range rs {
		out = append(out, toRefundResp(rr))
	}
	return out
}

type redemptionResp struct {
	SeqNo      int       `json:"seq_no"`
	RedeemedAt time.Time `json:"redeemed_at"`
	ActorID    uint64    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
}

func toRedemptionResps(rs []model.RedemptionRecord) []redemptionResp {
	out := make([]redemptionResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, redemptionResp{SeqNo: r.SeqNo, RedeemedAt: r.RedeemedAt, ActorID: r.ActorID, Note: r.Note})
	}
	return out
}

type scoreResp struct {
	UserID uint64  `json:"user_id"`
	Score  int     `json:"score"`
	Stars  float64 `json:"stars"`
}

func toScoreResp(s service.Score) scoreResp {
	return scoreResp{UserID: s.UserID, Score: s.Score, Stars: s.Stars}
}

type venueResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

func toVenueResps(vs []model.Venue) []venueResp {
	out := make([]venueResp, 0, len(vs))
	for _, v := range vs {
		out = append(out, venueResp{ID: v.ID, Name: v.Name, City: v.City})
	}
	return out
}
