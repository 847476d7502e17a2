// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Event kinds published on the booking events queue.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is admitted or cancelled.
// It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type BookingEvent struct {
	EventID     string  `json:"event_id"`
	Kind        string  `json:"kind"`
	BookingID   uint64  `json:"booking_id"`
	RoomID      uint64  `json:"room_id"`
	RequesterID string  `json:"requester_id"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	Status      string  `json:"status"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	EmittedAt   string  `json:"emitted_at"`
}

// NewBookingEvent builds an event of the given kind from a booking
// snapshot.  Each event gets a fresh UUID so consumers can deduplicate
// redelivered messages.
func NewBookingEvent(kind string, b *model.Booking) BookingEvent {
	ev := BookingEvent{
		EventID:     uuid.NewString(),
		Kind:        kind,
		BookingID:   b.ID,
		RoomID:      b.RoomID,
		RequesterID: b.RequesterID,
		StartsAt:    b.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:      b.EndsAt.UTC().Format(time.RFC3339),
		Status:      string(b.Status),
		EmittedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		iso := b.CancelledAt.UTC().Format(time.RFC3339)
		ev.CancelledAt = &iso
	}
	return ev
}
