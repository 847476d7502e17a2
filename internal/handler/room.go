package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// RoomHandler exposes the room registry over HTTP.  Creation,
// deactivation and reactivation are admin-only; the role gate is
// applied by middleware at route registration.
type RoomHandler struct {
	Registry *booking.Registry // room identity and soft-delete rules
	Service  *booking.Service  // read access to a room's bookings
}

// NewRoomHandler constructs a RoomHandler.  All dependencies must be
// non-nil.
func NewRoomHandler(registry *booking.Registry, service *booking.Service) *RoomHandler {
	if registry == nil || service == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Registry: registry, Service: service}
}

// CreateRoom handles POST /v1/rooms.  The body carries number, capacity,
// type and an optional location.  The room ID is assigned by the store;
// any client-supplied id is ignored by binding only the fields below.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var body struct {
		Number   string  `json:"number"`
		Capacity uint32  `json:"capacity"`
		Type     string  `json:"type"`
		Location *string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	roomType := model.RoomType(strings.ToUpper(strings.TrimSpace(body.Type)))
	var location *string
	if body.Location != nil && strings.TrimSpace(*body.Location) != "" {
		loc := strings.TrimSpace(*body.Location)
		location = &loc
	}
	room, err := h.Registry.CreateRoom(c.Request().Context(), body.Number, body.Capacity, roomType, location)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"room": toRoomJSON(room)})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Registry.GetRoom(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room": toRoomJSON(room)})
}

// ListRooms handles GET /v1/rooms.  Query parameters: active=true to
// hide deactivated rooms, min_capacity=N, location=substring.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	var filter booking.RoomFilter
	if v := c.QueryParam("active"); v == "true" || v == "1" {
		filter.ActiveOnly = true
	}
	if v := c.QueryParam("min_capacity"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_capacity"})
		}
		filter.MinCapacity = uint32(n)
	}
	filter.Location = strings.TrimSpace(c.QueryParam("location"))
	rooms, err := h.Registry.ListRooms(c.Request().Context(), filter)
	if err != nil {
		return writeDomainError(c, err)
	}
	items := make([]roomJSON, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, toRoomJSON(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeactivateRoom handles DELETE /v1/rooms/:id.  The room is soft
// deleted: the row stays, bookings history stays, and the operation is
// refused with 409 while future bookings exist.
func (h *RoomHandler) DeactivateRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Registry.Deactivate(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room": toRoomJSON(room)})
}

// ReactivateRoom handles POST /v1/rooms/:id/reactivate.
func (h *RoomHandler) ReactivateRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Registry.Reactivate(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room": toRoomJSON(room)})
}

// ListRoomBookings handles GET /v1/rooms/:id/bookings.
func (h *RoomHandler) ListRoomBookings(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	items, err := h.Service.ListBookingsForRoom(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookingJSONList(items)})
}
