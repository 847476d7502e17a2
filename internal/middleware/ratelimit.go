package middleware

// Token-bucket rate limiter backed by Redis.  Booking writes are the
// expensive path (each admission serializes on a room lock and may open
// a database transaction), so write methods drain more tokens than
// reads.  Bucket state lives in a Redis hash updated atomically by a
// Lua script; when Redis is unreachable the limiter fails open.

import (
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/meeting-room-booking/internal/config"
)

// writeCost is the token price of a state-changing request.  Reads cost 1.
const writeCost = 3

var bucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])
    local cost = tonumber(ARGV[6])

    local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
    local tokens = tonumber(state[1])
    local refilled = tonumber(state[2])
    if tokens == nil or refilled == nil then
        tokens = capacity
        refilled = now_ms
    end

    local elapsed = now_ms - refilled
    if elapsed > 0 and interval_ms > 0 then
        local steps = math.floor(elapsed / interval_ms)
        if steps > 0 then
            tokens = math.min(capacity, tokens + steps * refill_tokens)
            refilled = refilled + steps * interval_ms
        end
    end

    local allowed = 0
    local retry_ms = 0
    if tokens >= cost then
        allowed = 1
        tokens = tokens - cost
    else
        retry_ms = interval_ms - (now_ms - refilled)
        if retry_ms < 0 then retry_ms = 0 end
    end

    redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_ms }
`)

// NewTokenBucket builds the rate-limit middleware from config.  With
// rate limiting disabled or no Redis client the middleware is a no-op.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cost := 1
            switch c.Request().Method {
            case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
                cost = writeCost
            }

            key := rateKey(cfg, c)
            args := []interface{}{
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL / time.Second),
                cost,
            }
            vals, err := bucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
                }
                return next(c)
            }
            arr, ok := vals.([]interface{})
            if !ok || len(arr) != 3 {
                return next(c)
            }
            allowed := toInt64(arr[0]) == 1
            remaining := toInt64(arr[1])
            retryMs := toInt64(arr[2])

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }

            if !allowed {
                secs := int(math.Ceil(float64(retryMs) / 1000.0))
                h.Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func toInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case string:
        n, _ := strconv.ParseInt(t, 10, 64)
        return n
    }
    return 0
}

// rateKey assembles the bucket key from the configured strategy, an
// underscore-joined list of "ip", "user" and "route" components.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix}
    for _, comp := range strings.Split(strings.ToLower(cfg.KeyStrategy), "_") {
        switch comp {
        case "ip":
            parts = append(parts, "ip", ip)
        case "user":
            parts = append(parts, "user", currentUserID(c))
        case "route":
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        }
    }
    if len(parts) == 1 {
        parts = append(parts, "ip", ip, "user", currentUserID(c))
    }
    return strings.Join(parts, ":")
}
