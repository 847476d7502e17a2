package booking

import (
	"context"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// DefaultGraceWindow is how far in the past a booking may start.  The
// window tolerates clock skew and request latency; anything earlier is
// a backdated booking and is rejected.
const DefaultGraceWindow = 5 * time.Minute

// Service is the admission controller: the single place where a
// requested slot becomes a booking.  The conflict check and the insert
// run inside one per-room critical section, so two concurrent requests
// for overlapping slots can never both be admitted.  All transport
// layers must go through this type; nothing else writes bookings.
type Service struct {
	store Store
	clock Clock
	locks *RoomLocks
	grace time.Duration
}

// NewService constructs the admission controller.  The locks instance
// must be shared with the Registry built for the same store.  A
// non-positive grace falls back to DefaultGraceWindow.
func NewService(store Store, clock Clock, locks *RoomLocks, grace time.Duration) *Service {
	if store == nil || clock == nil || locks == nil {
		panic("nil dependency passed to NewService")
	}
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	return &Service{store: store, clock: clock, locks: locks, grace: grace}
}

// RequestBooking validates the slot, checks the room, and admits the
// booking if it does not overlap any PENDING or CONFIRMED booking on
// the same room.  On success the booking is persisted in PENDING state
// before the critical section is released and returned to the caller.
// Domain failures are ErrInvalidTimeRange, ErrRoomNotFound,
// ErrRoomInactive and ErrBookingConflict; infrastructure failures
// surface as *StorageError and leave no partial state behind.
func (s *Service) RequestBooking(ctx context.Context, roomID uint64, requesterID string, startsAt, endsAt time.Time) (*model.Booking, error) {
	now := s.clock.Now()
	startsAt = startsAt.UTC()
	endsAt = endsAt.UTC()
	if !startsAt.Before(endsAt) {
		return nil, ErrInvalidTimeRange
	}
	if startsAt.Before(now.Add(-s.grace)) {
		return nil, ErrInvalidTimeRange
	}

	unlock := s.locks.lock(roomID)
	defer unlock()

	// The room is read inside the critical section: Deactivate flips
	// is_active under the same lock, so admission can never observe a
	// room as active after its deactivation committed.
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, storageErr("get room", err)
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	existing, err := s.store.LoadBookingsForRoom(ctx, roomID)
	if err != nil {
		return nil, storageErr("load bookings", err)
	}
	for _, b := range existing {
		if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
			continue
		}
		if Overlaps(startsAt, endsAt, b.StartsAt, b.EndsAt) {
			return nil, ErrBookingConflict
		}
	}

	created := &model.Booking{
		RoomID:      roomID,
		RequesterID: requesterID,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Status:      model.BookingPending,
		CreatedAt:   now,
	}
	if err := s.store.InsertBooking(ctx, created); err != nil {
		// The store may detect an overlap on its own (e.g. a row
		// written outside this process); that is still a conflict.
		return nil, storageErr("insert booking", err)
	}
	return created, nil
}

// GetBooking returns a booking with its effective status applied, so a
// confirmed booking whose end has passed reads as COMPLETED without the
// stored row being touched.
func (s *Service) GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	b.Status = EffectiveStatus(b, s.clock.Now())
	return b, nil
}

// ListBookingsForRoom returns every booking on a room with effective
// statuses applied.
func (s *Service) ListBookingsForRoom(ctx context.Context, roomID uint64) ([]*model.Booking, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return nil, storageErr("get room", err)
	}
	items, err := s.store.LoadBookingsForRoom(ctx, roomID)
	if err != nil {
		return nil, storageErr("load bookings", err)
	}
	now := s.clock.Now()
	for _, b := range items {
		b.Status = EffectiveStatus(b, now)
	}
	return items, nil
}

// ListBookingsByRequester returns the caller's bookings with effective
// statuses applied.
func (s *Service) ListBookingsByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error) {
	items, err := s.store.ListBookingsByRequester(ctx, requesterID)
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	now := s.clock.Now()
	for _, b := range items {
		b.Status = EffectiveStatus(b, now)
	}
	return items, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED.  The same
// ownership hook as cancellation applies: a non-privileged caller may
// only confirm their own booking.  The transition runs inside the
// room's critical section so it cannot interleave with a concurrent
// cancel of the same booking.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID uint64, requesterID string, isPrivileged bool) (*model.Booking, error) {
	return s.transition(ctx, bookingID, requesterID, isPrivileged, func(b *model.Booking, _ time.Time) error {
		return confirm(b)
	})
}

// CancelBooking moves a PENDING or CONFIRMED booking to CANCELLED and
// stamps CancelledAt.  If the caller is not privileged and did not
// create the booking, ErrNotOwner is returned before any state is
// touched.  Cancelling an already cancelled or completed booking fails
// with ErrInvalidTransition; the booking row is never deleted.
func (s *Service) CancelBooking(ctx context.Context, bookingID uint64, requesterID string, isPrivileged bool) (*model.Booking, error) {
	return s.transition(ctx, bookingID, requesterID, isPrivileged, cancel)
}

// transition loads a booking, enforces the ownership hook, applies fn
// under the room lock and persists the result.
func (s *Service) transition(ctx context.Context, bookingID uint64, requesterID string, isPrivileged bool, fn func(*model.Booking, time.Time) error) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if !isPrivileged && b.RequesterID != requesterID {
		return nil, ErrNotOwner
	}

	unlock := s.locks.lock(b.RoomID)
	defer unlock()

	// Reload inside the critical section; another transition may have
	// run between the ownership check and the lock.
	b, err = s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if err := fn(b, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, storageErr("update booking", err)
	}
	return b, nil
}
