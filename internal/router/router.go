package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/meeting-room-booking/internal/handler"    // import the handlers that translate core results
	"github.com/iliyamo/meeting-room-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running and its database reachable.
	e.GET("/healthz", health.Health)
}

// RegisterRooms registers the room registry endpoints.  Listing and
// lookups are open to any authenticated user; creation, deactivation
// and reactivation are restricted to admins because they change which
// rooms can be booked at all.
func RegisterRooms(e *echo.Echo, rooms *handler.RoomHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "EMPLOYEE"))
	g.GET("/rooms", rooms.ListRooms)
	g.GET("/rooms/:id", rooms.GetRoom)
	g.GET("/rooms/:id/bookings", rooms.ListRoomBookings)

	// Admin-only mutations live on their own group so the role gate is
	// applied once.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/rooms", rooms.CreateRoom)
	admin.DELETE("/rooms/:id", rooms.DeactivateRoom)
	admin.POST("/rooms/:id/reactivate", rooms.ReactivateRoom)
}

// RegisterBookings registers the booking lifecycle endpoints.  Every
// route requires a valid access token; ownership of individual
// bookings is enforced by the core, not by middleware.
func RegisterBookings(e *echo.Echo, bookings *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "EMPLOYEE"))
	g.POST("/bookings", bookings.RequestBooking)
	g.GET("/bookings/:id", bookings.GetBooking)
	g.POST("/bookings/:id/confirm", bookings.ConfirmBooking)
	g.DELETE("/bookings/:id", bookings.CancelBooking)
	g.GET("/my-bookings", bookings.ListMyBookings)

	// The conflict report exists for data repair and admin resolution
	// workflows; it exposes other users' bookings, hence admin only.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.GET("/conflicts", bookings.ListConflicts)
}
