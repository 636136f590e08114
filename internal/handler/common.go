package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores claims as generic values, so several numeric
// representations must be accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// rejectionStatus maps an engine rejection reason onto an HTTP status:
// unknown entities are 404, unpaid purchases are 402 Payment Required,
// and every other rejection is a 409 state conflict.
func rejectionStatus(reason lifecycle.Reason) int {
	switch reason {
	case lifecycle.ReasonNotFound:
		return http.StatusNotFound
	case lifecycle.ReasonNotPaid:
		return http.StatusPaymentRequired
	default:
		return http.StatusConflict
	}
}

// fail renders an error JSON response.  Engine rejections carry their
// stable reason code; repository sentinels map to the usual statuses;
// anything else is a 500 with the fallback message so internals never
// leak to clients.
func fail(c echo.Context, err error, fallback string) error {
	if reason := lifecycle.ReasonOf(err); reason != "" {
		return c.JSON(rejectionStatus(reason), echo.Map{"error": err.Error(), "reason": string(reason)})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
	}
}
