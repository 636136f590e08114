package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/reserbit/venue-lifecycle/internal/config"
)

// tokenBucketScript implements a refilling token bucket atomically in
// Redis.  State per key is the token count and the last refill
// timestamp; the script refills whole intervals, spends one token when
// available and reports how long until the next token otherwise.
var tokenBucketScript = redis.NewScript(`
	local bucket = KEYS[1]
	local now = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local interval = tonumber(ARGV[4])
	local ttl = tonumber(ARGV[5])

	local state = redis.call('HMGET', bucket, 'tokens', 'refilled_at')
	local tokens = tonumber(state[1])
	local refilled_at = tonumber(state[2])
	if tokens == nil or refilled_at == nil then
		tokens = capacity
		refilled_at = now
	end

	local cycles = math.floor(math.max(0, now - refilled_at) / interval)
	if cycles > 0 then
		tokens = math.min(capacity, tokens + cycles * refill)
		refilled_at = refilled_at + cycles * interval
	end

	local granted = 0
	local wait = 0
	if tokens > 0 then
		granted = 1
		tokens = tokens - 1
	else
		wait = math.max(0, interval - (now - refilled_at))
	end

	redis.call('HMSET', bucket, 'tokens', tokens, 'refilled_at', refilled_at)
	redis.call('EXPIRE', bucket, ttl)
	return { granted, tokens, wait }
`)

// NewTokenBucket rate limits requests through a shared Redis bucket.
// Redis being down or the config disabled turns the middleware into a
// pass-through: limiting protects the counter endpoints, it must never
// become the reason they are unavailable.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: script failed for %s: %v", key, err)
				}
				return next(c)
			}
			granted, remaining, waitMs := res[0] == 1, res[1], res[2]

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}

			if !granted {
				secs := int(math.Ceil(float64(waitMs) / 1000))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error { return next(c) }
}

// rateKey assembles the bucket key from the configured strategy.  The
// default scopes buckets per staff user and route, so one misbehaving
// scanner cannot starve the whole counter.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userID(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "ip_user_route":
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	default: // "user_route"
		parts = append(parts, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
