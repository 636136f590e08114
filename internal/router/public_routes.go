package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/reserbit/venue-lifecycle/internal/config"
	"github.com/reserbit/venue-lifecycle/internal/handler"
	"github.com/reserbit/venue-lifecycle/internal/middleware"
)

// RegisterPublic registers the unauthenticated browse endpoints.  The
// venue listing is read-heavy and changes rarely, so responses are
// served through the Redis response cache when a client is available.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	if rdb != nil {
		g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	g.GET("/venues", p.ListVenues)
}
