package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes
    "strings"  // strings normalizes role names before comparison

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware that only lets through callers whose
// JWT "role" claim is one of the given roles.  The booking API uses two
// roles: EMPLOYEE for requesting and managing own bookings, ADMIN for
// room administration and the conflict report.  Comparison is
// case-insensitive; JWTAuth must have run first and stored the role in
// the context under "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[strings.ToUpper(r)] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[strings.ToUpper(role)] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
