package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reserbit/venue-lifecycle/internal/repository"
	"github.com/reserbit/venue-lifecycle/internal/service"
)

// CustomerHandler exposes the customer-facing booking and redemption
// surface: listing and cancelling reservations, browsing owned units,
// asking for refunds and reading the reliability score.
type CustomerHandler struct {
	Reservations *service.ReservationService
	Refunds      *service.RefundService
	Reliability  *service.ReliabilityService
	Units        *repository.UnitRepo
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(res *service.ReservationService, ref *service.RefundService, rel *service.ReliabilityService, units *repository.UnitRepo) *CustomerHandler {
	return &CustomerHandler{Reservations: res, Refunds: ref, Reliability: rel, Units: units}
}

type bookReq struct {
	VenueID   uint64 `json:"venue_id"`
	StartsAt  string `json:"starts_at"` // RFC3339
	PartySize uint32 `json:"party_size"`
}

type refundReq struct {
	Reason       string `json:"reason"`
	PreferCredit bool   `json:"prefer_credit"`
}

// Book handles POST /v1/reservations and creates a new REQUESTED
// reservation for the caller.
func (h *CustomerHandler) Book(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	if req.VenueID == 0 || req.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_id and party_size required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Book(ctx, req.VenueID, uid, startsAt, req.PartySize)
	if err != nil {
		return fail(c, err, "create reservation failed")
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// MyReservations handles GET /v1/my-reservations.
func (h *CustomerHandler) MyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListMine(ctx, uid)
	if err != nil {
		return fail(c, err, "list reservations failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": toReservationResps(list)})
}

// CancelReservation handles POST /v1/reservations/:id/cancel.  The
// cancellation tier is returned so clients can explain any penalty.
func (h *CustomerHandler) CancelReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, tier, err := h.Reservations.Cancel(ctx, id, uid, false)
	if err != nil {
		return fail(c, err, "cancel failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": toReservationResp(res), "tier": tier})
}

// MyUnits handles GET /v1/my-units.
func (h *CustomerHandler) MyUnits(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Units.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err, "list units failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"units": toUnitResps(list)})
}

// RequestRefund handles POST /v1/units/:id/refund.
func (h *CustomerHandler) RequestRefund(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit id"})
	}
	var req refundReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rr, err := h.Refunds.Request(ctx, id, uid, strings.TrimSpace(req.Reason), req.PreferCredit)
	if err != nil {
		return fail(c, err, "refund request failed")
	}
	return c.JSON(http.StatusCreated, toRefundResp(rr))
}

// MyReliability handles GET /v1/me/reliability.
func (h *CustomerHandler) MyReliability(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	score, err := h.Reliability.ScoreFor(ctx, uid)
	if err != nil {
		return fail(c, err, "score lookup failed")
	}
	return c.JSON(http.StatusOK, toScoreResp(score))
}
