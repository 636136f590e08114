package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/reserbit/venue-lifecycle/internal/config"
	"github.com/reserbit/venue-lifecycle/internal/handler"
	"github.com/reserbit/venue-lifecycle/internal/middleware"
	"github.com/reserbit/venue-lifecycle/internal/model"
)

// RegisterStaff registers the venue-side counter endpoints under /v1.
// All routes require a valid JWT and the STAFF or ADMIN role.  The
// redeem and scan endpoints sit behind the Redis token-bucket rate
// limiter because they are driven by counter hardware that can
// misbehave and hammer the API.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin),
	)
	g.POST("/reservations/:id/status", h.SetReservationStatus)
	g.POST("/reservations/:id/venue-cancel", h.CancelByVenue)
	g.GET("/venues/:id/reservations", h.VenueReservations)
	g.GET("/units/lookup/:code", h.LookupUnit)
	g.GET("/units/:id/redemptions", h.UnitRedemptions)
	g.GET("/units/:id/refunds", h.UnitRefunds)
	g.GET("/refunds/pending", h.PendingRefunds)
	g.GET("/refunds/:id", h.RefundByID)
	g.POST("/refunds/:id/approve", h.ApproveRefund)
	g.POST("/venues/:id/deactivate", h.DeactivateVenue)

	counter := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin),
	)
	if rdb != nil {
		counter.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	counter.POST("/units/:id/redeem", h.RedeemUnit)
	counter.POST("/units/:id/scan", h.ScanUnit)
}
