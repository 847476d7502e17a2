package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides the user identifier lookup used when building
// rate-limit keys.  The JWTAuth middleware stores the token subject in
// the context under "user_id"; unauthenticated requests fall back to
// "anon" so they share one bucket per IP.

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated caller's identifier from the
// context, or "anon" when the request carries no valid token.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
