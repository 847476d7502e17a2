package booking

import (
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// lifecycle.go holds the booking state machine.  Transitions mutate the
// booking in place and are only ever invoked by the engine; callers
// never change Status directly.  COMPLETED is derived at read time via
// EffectiveStatus rather than persisted, so no sweep job is needed and
// reads never mutate stored state.

// EffectiveStatus returns the status a booking should be reported with
// at the given instant.  A CONFIRMED booking whose end has passed is
// reported as COMPLETED even though no explicit transition was applied.
// PENDING bookings never auto-complete: an unconfirmed request stays
// pending until it is confirmed or cancelled.
func EffectiveStatus(b *model.Booking, now time.Time) model.BookingStatus {
	if b.Status == model.BookingConfirmed && !b.EndsAt.After(now) {
		return model.BookingCompleted
	}
	return b.Status
}

// confirm moves a booking from PENDING to CONFIRMED.  Any other current
// status is rejected with ErrInvalidTransition.
func confirm(b *model.Booking) error {
	if b.Status != model.BookingPending {
		return ErrInvalidTransition
	}
	b.Status = model.BookingConfirmed
	return nil
}

// cancel moves a PENDING or CONFIRMED booking to CANCELLED and stamps
// CancelledAt exactly once.  Cancelling twice, or cancelling a meeting
// that already finished, is rejected rather than silently accepted; the
// effective status is used so a confirmed booking whose end has passed
// counts as COMPLETED here.
func cancel(b *model.Booking, now time.Time) error {
	switch EffectiveStatus(b, now) {
	case model.BookingPending, model.BookingConfirmed:
	default:
		return ErrInvalidTransition
	}
	b.Status = model.BookingCancelled
	at := now
	b.CancelledAt = &at
	return nil
}

// complete explicitly moves a CONFIRMED booking to COMPLETED.  The
// engine relies on read-time derivation instead, but the transition is
// kept for stores that prefer to persist the terminal state.
func complete(b *model.Booking) error {
	if b.Status != model.BookingConfirmed {
		return ErrInvalidTransition
	}
	b.Status = model.BookingCompleted
	return nil
}
