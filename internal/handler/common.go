package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel comparisons via errors.Is
	"net/http" // http defines status code constants
	"time"     // time formats booking timestamps for responses

	"github.com/iliyamo/meeting-room-booking/internal/booking" // booking is the admission-control core
	"github.com/iliyamo/meeting-room-booking/internal/model"   // model holds the plain data records
	"github.com/labstack/echo/v4"                              // echo defines request context types
)

// adminRole is the role claim value that makes a caller privileged.
// Privileged callers may manage rooms and cancel any booking.
const adminRole = "ADMIN"

// requesterID extracts the authenticated caller's identifier from the
// echo context.  The JWT middleware stores the token subject under
// "user_id"; an empty value means the middleware did not run.
func requesterID(c echo.Context) (string, error) {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("missing user_id in context")
}

// isPrivileged reports whether the caller carries the admin role.
func isPrivileged(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == adminRole
}

// writeDomainError maps a core error onto the HTTP status codes the API
// exposes.  Every sentinel the engine can return is handled here so the
// translation lives in exactly one place.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidTimeRange), errors.Is(err, booking.ErrInvalidRoom):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomNotFound), errors.Is(err, booking.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomInactive),
		errors.Is(err, booking.ErrBookingConflict),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrHasFutureBookings):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// roomJSON is the wire representation of a room.
type roomJSON struct {
	ID       uint64  `json:"id"`
	Number   string  `json:"number"`
	Capacity uint32  `json:"capacity"`
	Type     string  `json:"type"`
	Location *string `json:"location,omitempty"`
	IsActive bool    `json:"is_active"`
}

func toRoomJSON(r *model.Room) roomJSON {
	return roomJSON{
		ID:       r.ID,
		Number:   r.Number,
		Capacity: r.Capacity,
		Type:     string(r.Type),
		Location: r.Location,
		IsActive: r.IsActive,
	}
}

// bookingJSON is the wire representation of a booking.  Timestamps are
// RFC3339 in UTC.
type bookingJSON struct {
	ID          uint64  `json:"id"`
	RoomID      uint64  `json:"room_id"`
	RequesterID string  `json:"requester_id"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
}

func toBookingJSON(b *model.Booking) bookingJSON {
	out := bookingJSON{
		ID:          b.ID,
		RoomID:      b.RoomID,
		RequesterID: b.RequesterID,
		StartsAt:    b.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:      b.EndsAt.UTC().Format(time.RFC3339),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		iso := b.CancelledAt.UTC().Format(time.RFC3339)
		out.CancelledAt = &iso
	}
	return out
}

func toBookingJSONList(items []*model.Booking) []bookingJSON {
	out := make([]bookingJSON, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingJSON(b))
	}
	return out
}
