package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reserbit/venue-lifecycle/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface.
type PublicHandler struct {
	Venues *repository.VenueRepo
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(venues *repository.VenueRepo) *PublicHandler {
	return &PublicHandler{Venues: venues}
}

// ListVenues handles GET /v1/venues and returns all active venues.
// Responses are cached by the response-cache middleware.
func (h *PublicHandler) ListVenues(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Venues.ListActive(ctx)
	if err != nil {
		return fail(c, err, "list venues failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": toVenueResps(list)})
}
