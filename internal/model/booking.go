package model

import "time"

// BookingStatus enumerates the booking state machine.  PENDING is the
// initial state, CANCELLED and COMPLETED are terminal.  The values match
// the `status` column of the bookings table.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Booking records a request for a room over a half-open time range
// [StartsAt, EndsAt).  A booking is never physically deleted;
// cancellation is a status transition so historical records stay
// intact.  Timestamps are stored in UTC.
//
// Fields:
//  ID          – primary key identifier, store-assigned.
//  RoomID      – room being booked.
//  RequesterID – opaque identifier of who booked (JWT subject).
//  StartsAt    – inclusive start of the slot.
//  EndsAt      – exclusive end of the slot.
//  Status      – state of the booking (see BookingStatus).
//  CreatedAt   – set once, at creation.
//  CancelledAt – set exactly once, on the transition into CANCELLED.
type Booking struct {
	ID          uint64        // bookings.id
	RoomID      uint64        // bookings.room_id
	RequesterID string        // bookings.requester_id
	StartsAt    time.Time     // bookings.starts_at
	EndsAt      time.Time     // bookings.ends_at
	Status      BookingStatus // bookings.status
	CreatedAt   time.Time     // bookings.created_at
	CancelledAt *time.Time    // bookings.cancelled_at (nullable)
}
