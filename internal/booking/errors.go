// Package booking implements the admission-control and lifecycle engine
// for conference-room bookings.  It decides whether a requested
// room/time-slot may become a booking, detects conflicts with existing
// bookings, and drives the booking status state machine together with
// the room soft-delete rule.  The package depends on persistence only
// through the Store interface and is transport-agnostic: every failure
// is reported as one of the sentinel errors below and never logged or
// swallowed internally.
package booking

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeRange is returned when a requested slot is malformed:
// the end does not come after the start, or the start lies before the
// grace window.  Handlers should translate this into an HTTP 400.
var ErrInvalidTimeRange = errors.New("invalid time range")

// ErrRoomNotFound is returned when a referenced room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomInactive is returned when the target room exists but has been
// deactivated and therefore cannot accept new bookings.
var ErrRoomInactive = errors.New("room is inactive")

// ErrBookingConflict is returned when admission is denied because the
// requested slot overlaps an existing PENDING or CONFIRMED booking on
// the same room.  The caller may propose a different slot; retrying the
// same one does not change the outcome.
var ErrBookingConflict = errors.New("booking conflict")

// ErrInvalidTransition is returned when a lifecycle rule is violated,
// such as confirming a cancelled booking or cancelling one twice.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrHasFutureBookings is returned when a room cannot be deactivated
// because at least one PENDING or CONFIRMED booking on it starts in the
// future.
var ErrHasFutureBookings = errors.New("room has future bookings")

// ErrNotOwner is returned by the ownership precondition hook when a
// non-privileged caller attempts to cancel a booking created by someone
// else.  Actual authorization policy lives in the transport layer.
var ErrNotOwner = errors.New("not the booking owner")

// ErrInvalidRoom is returned when room creation input is rejected:
// empty number, non-positive capacity, unknown type, or a number
// already used by an active room.
var ErrInvalidRoom = errors.New("invalid room")

// StorageError wraps an unexpected infrastructure failure from the
// Store (I/O, serialization, connectivity).  It is distinct from all
// domain errors so callers can decide to retry the whole operation;
// retrying is safe because admission re-evaluates conflicts against
// current state.
type StorageError struct {
	Op  string // the store operation that failed, e.g. "insert booking"
	Err error  // the underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *StorageError) Unwrap() error { return e.Err }

// storageErr wraps err in a *StorageError unless it already is a domain
// sentinel or nil.  Store implementations return sentinels for domain
// conditions (conflict, not found); everything else is infrastructure.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrBookingConflict),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrRoomInactive),
		errors.Is(err, ErrBookingNotFound):
		return err
	}
	return &StorageError{Op: op, Err: err}
}
