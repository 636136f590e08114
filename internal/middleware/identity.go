package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a userID extraction function that reads the authenticated user ID
// placed in the Echo context by JWTAuth. The value may be a string or any of
// the numeric types JSON claims decode into. When no user is authenticated,
// "guest" is returned so cache and rate-limit keys stay well formed.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the request context. It returns
// "guest" when no user is authenticated or the value has an unexpected type.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    case int:
        return strconv.Itoa(v)
    }
    return "guest"
}
