package middleware

// Redis response cache for the read-only booking endpoints.  Cached
// entries store status, headers and body so a HIT replays the original
// response byte for byte.  The caller's identity is always part of the
// cache key: listings such as "my bookings" differ per user, and a
// route-only key would leak one user's bookings to another.

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/meeting-room-booking/internal/config"
)

// cachedResponse is the envelope stored in Redis.  Body is base64 via
// encoding/json's []byte handling.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// bodyRecorder captures the response while forwarding it to the client.
// Once the body exceeds the limit the recording is abandoned and the
// response is not cached.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    parts := []string{c.Path(), currentUserID(c)}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        // route + user only
    case "method_route":
        parts = append(parts, r.Method)
    case "method_route_query":
        parts = append(parts, r.Method, r.URL.RawQuery)
    default: // route_query
        parts = append(parts, r.URL.RawQuery)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// NewRedisCache returns the response-cache middleware.  With caching
// disabled or no Redis client it is a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 15 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var entry cachedResponse
                if json.Unmarshal(bs, &entry) == nil && entry.Status != 0 {
                    for k, vals := range entry.Header {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(entry.Status)
                    if len(entry.Body) > 0 {
                        _, _ = c.Response().Write(entry.Body)
                    }
                    return nil
                }
            }

            rec := &bodyRecorder{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          cfg.MaxBodyBytes,
            }
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Only successful, size-bounded responses are cached.
            if rec.status == http.StatusOK && !rec.overflow {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    hdr[k] = append([]string(nil), vals...)
                }
                entry := cachedResponse{Status: rec.status, Header: hdr, Body: rec.buf.Bytes()}
                if payload, err := json.Marshal(entry); err == nil {
                    _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
                }
            }
            return nil
        }
    }
}
