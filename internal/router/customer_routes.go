package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/reserbit/venue-lifecycle/internal/config"
	"github.com/reserbit/venue-lifecycle/internal/handler"
	"github.com/reserbit/venue-lifecycle/internal/middleware"
	"github.com/reserbit/venue-lifecycle/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers can
// book and cancel their reservations, browse their redeemable units,
// request refunds and read their reliability score.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)
	g.POST("/reservations", h.Book)
	g.GET("/my-reservations", h.MyReservations)
	g.POST("/reservations/:id/cancel", h.CancelReservation)
	g.GET("/my-units", h.MyUnits)
	g.POST("/units/:id/refund", h.RequestRefund)

	// The reliability score is derived from slow-moving counters, so the
	// endpoint is served through the response cache when Redis is up.  The
	// cache key must include the user, otherwise one customer's score would
	// be served to another.
	rel := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)
	if rdb != nil {
		cc := config.LoadCacheConfig()
		cc.KeyStrategy = "user_route"
		rel.Use(middleware.NewRedisCache(cc, rdb))
	}
	rel.GET("/me/reliability", h.MyReliability)
}
