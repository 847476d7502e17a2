package handler // declare the package name; contains HTTP handlers

import (
    "context"      // context bounds the database ping
    "database/sql" // sql.DB is pinged to report storage reachability
    "net/http"     // net/http provides status codes and response helpers
    "time"         // time reports the server clock in the health payload

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// HealthHandler serves the health-check endpoint used by load balancers
// and monitoring systems.  With a database configured it also pings it,
// so an unreachable MySQL turns the check red instead of failing only
// on the first booking write.
type HealthHandler struct {
    db *sql.DB // nil when the memory store is in use
}

// NewHealthHandler constructs a HealthHandler; db may be nil.
func NewHealthHandler(db *sql.DB) *HealthHandler {
    return &HealthHandler{db: db}
}

// Health reports liveness, the server's UTC time (so operators can spot
// clock skew, which would distort grace-window and completion checks)
// and, when applicable, database reachability.
func (h *HealthHandler) Health(c echo.Context) error {
    resp := map[string]string{
        "status": "ok",
        "time":   time.Now().UTC().Format(time.RFC3339),
    }
    if h.db != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := h.db.PingContext(ctx); err != nil {
            resp["status"] = "degraded"
            resp["database"] = "unreachable"
            return c.JSON(http.StatusServiceUnavailable, resp)
        }
        resp["database"] = "ok"
    }
    return c.JSON(http.StatusOK, resp)
}
