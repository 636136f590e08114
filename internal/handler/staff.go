package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
	"github.com/reserbit/venue-lifecycle/internal/repository"
	"github.com/reserbit/venue-lifecycle/internal/service"
)

// StaffHandler exposes the venue-side counter operations: driving
// reservation statuses, redeeming and scanning units, approving
// refunds and deactivating venues.
type StaffHandler struct {
	Reservations *service.ReservationService
	Redemptions  *service.RedemptionService
	Refunds      *service.RefundService
	Venues       *repository.VenueRepo
	Units        *repository.UnitRepo
	Bookings     *repository.ReservationRepo
	RefundLog    *repository.RefundRepo
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(res *service.ReservationService, red *service.RedemptionService, ref *service.RefundService, venues *repository.VenueRepo, units *repository.UnitRepo, bookings *repository.ReservationRepo, refundLog *repository.RefundRepo) *StaffHandler {
	return &StaffHandler{Reservations: res, Redemptions: red, Refunds: ref, Venues: venues, Units: units, Bookings: bookings, RefundLog: refundLog}
}

type setStatusReq struct {
	Status string `json:"status"`
}

type redeemReq struct {
	Note string `json:"note"`
}

// SetReservationStatus handles POST /v1/reservations/:id/status.  The
// target status must be reachable from the current one in the
// transition table; illegal targets come back as 409 with the
// invalid_transition reason.
func (h *StaffHandler) SetReservationStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	target := lifecycle.ReservationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if target == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.SetStatus(ctx, id, target)
	if err != nil {
		return fail(c, err, "status change failed")
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// CancelByVenue handles POST /v1/reservations/:id/venue-cancel.  Venue
// cancellations bypass the customer's cancellation window and never
// penalise the customer.
func (h *StaffHandler) CancelByVenue(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, tier, err := h.Reservations.Cancel(ctx, id, 0, true)
	if err != nil {
		return fail(c, err, "cancel failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": toReservationResp(res), "tier": tier})
}

// RedeemUnit handles POST /v1/units/:id/redeem: one use of a prepaid
// bundle is spent at the counter.
func (h *StaffHandler) RedeemUnit(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit id"})
	}
	var req redeemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	unit, cons, err := h.Redemptions.Redeem(ctx, id, actorID, strings.TrimSpace(req.Note))
	if err != nil {
		return fail(c, err, "redeem failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"unit":           toUnitResp(unit),
		"use_number":     cons.UseNumber,
		"uses_remaining": cons.UsesRemaining,
	})
}

// ScanUnit handles POST /v1/units/:id/scan: a seasonal-offer ticket is
// validated at the door.
func (h *StaffHandler) ScanUnit(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	unit, err := h.Redemptions.Scan(ctx, id, actorID)
	if err != nil {
		return fail(c, err, "scan failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"unit": toUnitResp(unit), "valid": true})
}

// PendingRefunds handles GET /v1/refunds/pending.
func (h *StaffHandler) PendingRefunds(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Refunds.ListPending(ctx)
	if err != nil {
		return fail(c, err, "list refunds failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"refunds": toRefundResps(list)})
}

// ApproveRefund handles POST /v1/refunds/:id/approve.  Approving a
// refund that was already processed is a harmless no-op.
func (h *StaffHandler) ApproveRefund(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid refund id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rr, err := h.Refunds.Approve(ctx, id)
	if err != nil {
		return fail(c, err, "approve failed")
	}
	return c.JSON(http.StatusOK, toRefundResp(rr))
}

// LookupUnit handles GET /v1/units/lookup/:code: counter staff resolve
// the code printed on a voucher or ticket before redeeming it.
func (h *StaffHandler) LookupUnit(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	unit, err := h.Units.GetByCode(ctx, code)
	if err != nil {
		return fail(c, err, "unit lookup failed")
	}
	return c.JSON(http.StatusOK, toUnitResp(unit))
}

// UnitRedemptions handles GET /v1/units/:id/redemptions and returns
// the unit's redemption history in sequence order.
func (h *StaffHandler) UnitRedemptions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Units.ListRedemptions(ctx, id)
	if err != nil {
		return fail(c, err, "list redemptions failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"redemptions": toRedemptionResps(list)})
}

// UnitRefunds handles GET /v1/units/:id/refunds.
func (h *StaffHandler) UnitRefunds(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.RefundLog.ListByUnit(ctx, id)
	if err != nil {
		return fail(c, err, "list refunds failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"refunds": toRefundResps(list)})
}

// RefundByID handles GET /v1/refunds/:id.
func (h *StaffHandler) RefundByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid refund id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rr, err := h.RefundLog.GetByID(ctx, id)
	if err != nil {
		return fail(c, err, "refund lookup failed")
	}
	return c.JSON(http.StatusOK, toRefundResp(rr))
}

// VenueReservations handles GET /v1/venues/:id/reservations for the
// venue's owner (or any admin).
func (h *StaffHandler) VenueReservations(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	role, _ := c.Get("role").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.ListByVenue(ctx, id, actorID, role == model.RoleAdmin)
	if err != nil {
		return fail(c, err, "list reservations failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": toReservationResps(list)})
}

// DeactivateVenue handles POST /v1/venues/:id/deactivate: the venue
// stops accepting bookings and every outstanding paid unit is refunded.
func (h *StaffHandler) DeactivateVenue(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	role, _ := c.Get("role").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.Venues.Deactivate(ctx, id, actorID, role == model.RoleAdmin); err != nil {
		return fail(c, err, "deactivate failed")
	}
	processed, failed, err := h.Refunds.RefundVenueUnits(ctx, id)
	if err != nil {
		return fail(c, err, "bulk refund failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id":  id,
		"refunded":  processed,
		"failed":    failed,
		"is_active": false,
	})
}
