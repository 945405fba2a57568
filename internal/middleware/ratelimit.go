package middleware

// Token-bucket rate limit backed by Redis. The public lead endpoints accept
// anonymous writes, so each client IP gets a small bucket refilled over time;
// the refill math runs in a Lua script to stay atomic under concurrency.

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/MP-make/pechos-inmobiliaria/internal/config"
)

// tokenBucketScript refills the bucket by elapsed time, then tries to take
// one token. Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_per_sec = tonumber(ARGV[2])
local now_ms = tonumber(ARGV[3])
local ttl_sec = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(data[1])
local last_ms = tonumber(data[2])

if tokens == nil then
  tokens = capacity
  last_ms = now_ms
end

local elapsed = math.max(0, now_ms - last_ms)
tokens = math.min(capacity, tokens + (elapsed / 1000.0) * refill_per_sec)

local allowed = 0
local retry_after_ms = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry_after_ms = math.ceil(((1 - tokens) / refill_per_sec) * 1000)
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', now_ms)
redis.call('EXPIRE', key, ttl_sec)

return {allowed, math.floor(tokens), retry_after_ms}
`)

func clientIP(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = c.Request().RemoteAddr
	}
	return ip
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	return strings.Join([]string{cfg.Prefix, c.Path(), clientIP(c)}, ":")
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// NewTokenBucket limits requests per client IP on the wrapped routes.
// Without Redis the limiter is a no-op rather than an outage.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 5
	}
	refill := cfg.RefillPerSec
	if refill <= 0 {
		refill = 0.2
	}
	ttl := int(math.Ceil(float64(capacity)/refill)) + 60

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := rateKey(cfg, c)
			now := time.Now().UnixMilli()

			res, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				capacity, refill, now, ttl).Result()
			if err != nil {
				// Redis trouble should not take the lead form down.
				c.Logger().Warnf("rate limit check failed: %v", err)
				return next(c)
			}

			vals, ok := res.([]interface{})
			if !ok || len(vals) != 3 {
				return next(c)
			}
			allowed := asInt64(vals[0]) == 1
			remaining := asInt64(vals[1])
			retryAfterMS := asInt64(vals[2])

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", capacity))
			h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			if !allowed {
				retrySec := int(math.Ceil(float64(retryAfterMS) / 1000.0))
				if retrySec < 1 {
					retrySec = 1
				}
				h.Set("Retry-After", fmt.Sprintf("%d", retrySec))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "demasiadas solicitudes, intenta de nuevo en unos segundos",
					"retry_after": retrySec,
				})
			}
			return next(c)
		}
	}
}
