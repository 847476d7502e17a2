package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	publisher "github.com/iliyamo/meeting-room-booking/internal/service"
)

// BookingHandler exposes the admission controller over HTTP.  All
// routes assume the JWT middleware already stored the caller's identity
// and role in the context.  Event publication after a successful write
// is best-effort: a broker failure is logged and never fails the
// request.
type BookingHandler struct {
	Service *booking.Service
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service *booking.Service) *BookingHandler {
	if service == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Service: service}
}

// RequestBooking handles POST /v1/bookings.  The body carries the room
// ID and an RFC3339 start/end pair.  On success the booking is created
// in PENDING state and returned with 201; an overlapping slot yields
// 409 and no state change.
func (h *BookingHandler) RequestBooking(c echo.Context) error {
	requester, err := requesterID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RoomID   uint64 `json:"room_id"`
		StartsAt string `json:"starts_at"`
		EndsAt   string `json:"ends_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	endsAt, err := time.Parse(time.RFC3339, body.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
	}

	created, err := h.Service.RequestBooking(c.Request().Context(), body.RoomID, requester, startsAt, endsAt)
	if err != nil {
		return writeDomainError(c, err)
	}
	h.publish(c, queue.BookingCreated, created)
	return c.JSON(http.StatusCreated, echo.Map{"booking": toBookingJSON(created)})
}

// GetBooking handles GET /v1/bookings/:id.  The status reported is the
// effective one: a confirmed booking whose end has passed reads as
// COMPLETED.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Service.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingJSON(b)})
}

// ConfirmBooking handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	requester, err := requesterID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Service.ConfirmBooking(c.Request().Context(), id, requester, isPrivileged(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingJSON(b)})
}

// CancelBooking handles DELETE /v1/bookings/:id.  Cancellation is a
// status transition, not a row delete; the record stays with its
// cancelled_at stamp for history.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	requester, err := requesterID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Service.CancelBooking(c.Request().Context(), id, requester, isPrivileged(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	h.publish(c, queue.BookingCancelled, b)
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingJSON(b)})
}

// ListMyBookings handles GET /v1/my-bookings.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	requester, err := requesterID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Service.ListBookingsByRequester(c.Request().Context(), requester)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookingJSONList(items)})
}

// ListConflicts handles GET /v1/conflicts (admin only).  The optional
// room_id query parameter narrows the scan to one room; without it all
// rooms are checked.  The scan is a diagnostic and mutates nothing.
func (h *BookingHandler) ListConflicts(c echo.Context) error {
	var roomID uint64
	if v := c.QueryParam("room_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		roomID = n
	}
	pairs, err := h.Service.ListConflicts(c.Request().Context(), roomID)
	if err != nil {
		return writeDomainError(c, err)
	}
	type pairJSON struct {
		RoomID uint64      `json:"room_id"`
		First  bookingJSON `json:"first"`
		Second bookingJSON `json:"second"`
	}
	items := make([]pairJSON, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, pairJSON{
			RoomID: p.RoomID,
			First:  toBookingJSON(p.First),
			Second: toBookingJSON(p.Second),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// publish sends a booking event to the broker, logging failures.
func (h *BookingHandler) publish(c echo.Context, kind string, b *model.Booking) {
	if err := publisher.PublishBookingEvent(c.Request().Context(), queue.NewBookingEvent(kind, b)); err != nil {
		log.Printf("booking event publish failed: %v", err)
	}
}
