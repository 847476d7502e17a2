package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/store/memory"
)

// fakeClock pins the engine's notion of now.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newEngine builds a registry and admission service over a fresh memory
// store, sharing one lock set the way the server wires them.
func newEngine(t *testing.T) (*booking.Registry, *booking.Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	store := memory.New()
	locks := booking.NewRoomLocks()
	return booking.NewRegistry(store, clock, locks),
		booking.NewService(store, clock, locks, booking.DefaultGraceWindow),
		clock
}

func mustRoom(t *testing.T, reg *booking.Registry, number string, capacity uint32) *model.Room {
	t.Helper()
	room, err := reg.CreateRoom(context.Background(), number, capacity, model.RoomTypeStandard, nil)
	require.NoError(t, err)
	return room
}

func at(clock *fakeClock, hour, min int) time.Time {
	now := clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, time.UTC)
}

func TestRequestBookingAdmitsFreeSlot(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)

	b, err := svc.RequestBooking(context.Background(), room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, room.ID, b.RoomID)
	assert.Equal(t, "u1", b.RequesterID)
	assert.NotZero(t, b.ID)

	// Round-trip: loading it back yields the same slot, still pending.
	loaded, err := svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.RoomID, loaded.RoomID)
	assert.True(t, b.StartsAt.Equal(loaded.StartsAt))
	assert.True(t, b.EndsAt.Equal(loaded.EndsAt))
	assert.Equal(t, model.BookingPending, loaded.Status)
}

func TestRequestBookingRejectsOverlap(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)

	_, err := svc.RequestBooking(context.Background(), room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)

	// 09:30–10:30 clashes with 09:00–10:00.
	_, err = svc.RequestBooking(context.Background(), room.ID, "u2", at(clock, 9, 30), at(clock, 10, 30))
	assert.ErrorIs(t, err, booking.ErrBookingConflict)
}

func TestRequestBookingAllowsTouchingBoundary(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)

	_, err := svc.RequestBooking(context.Background(), room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)

	// 10:00–11:00 touches 09:00–10:00 without overlapping.
	b, err := svc.RequestBooking(context.Background(), room.ID, "u2", at(clock, 10, 0), at(clock, 11, 0))
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
}

func TestRequestBookingUnknownRoom(t *testing.T) {
	_, svc, clock := newEngine(t)
	_, err := svc.RequestBooking(context.Background(), 999, "u1", at(clock, 9, 0), at(clock, 10, 0))
	assert.ErrorIs(t, err, booking.ErrRoomNotFound)
}

func TestRequestBookingInactiveRoom(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	_, err := reg.Deactivate(context.Background(), room.ID)
	require.NoError(t, err)

	_, err = svc.RequestBooking(context.Background(), room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	assert.ErrorIs(t, err, booking.ErrRoomInactive)
}

func TestRequestBookingTimeValidation(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	// end before start
	_, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 10, 0), at(clock, 9, 0))
	assert.ErrorIs(t, err, booking.ErrInvalidTimeRange)

	// zero-length slot
	_, err = svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 9, 0))
	assert.ErrorIs(t, err, booking.ErrInvalidTimeRange)

	// starts further in the past than the grace window allows
	_, err = svc.RequestBooking(ctx, room.ID, "u1", clock.Now().Add(-10*time.Minute), clock.Now().Add(time.Hour))
	assert.ErrorIs(t, err, booking.ErrInvalidTimeRange)

	// a start just inside the grace window is tolerated
	_, err = svc.RequestBooking(ctx, room.ID, "u1", clock.Now().Add(-4*time.Minute), clock.Now().Add(time.Hour))
	assert.NoError(t, err)
}

func TestRequestBookingConcurrentAdmitsExactlyOne(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)

	const n = 32
	start, end := at(clock, 9, 0), at(clock, 10, 0)

	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestBooking(context.Background(), room.ID, "u1", start, end)
		}(i)
	}
	wg.Wait()

	admitted, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, booking.ErrBookingConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, n-1, conflicts)
}

// gatedStore parks the admission path's room lookup until the test
// releases it, pinning a precise interleave with a concurrent
// deactivation.  Only the first GetRoom gates.
type gatedStore struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.Store.GetRoom(ctx, id)
}

func TestAdmissionAndDeactivationSerialize(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	store := &gatedStore{
		Store:   memory.New(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	locks := booking.NewRoomLocks()
	reg := booking.NewRegistry(store, clock, locks)
	svc := booking.NewService(store, clock, locks, booking.DefaultGraceWindow)
	ctx := context.Background()

	room, err := reg.CreateRoom(ctx, "A101", 10, model.RoomTypeStandard, nil)
	require.NoError(t, err)

	// Admission takes the room lock first and then parks on the room
	// lookup, still inside the critical section.
	admitted := make(chan error, 1)
	go func() {
		_, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
		admitted <- err
	}()
	<-store.entered

	// A deactivation arriving now must wait for the lock; if it could
	// slip through the gap it would flip the room inactive underneath
	// the in-flight admission.
	deactivated := make(chan error, 1)
	go func() {
		_, err := reg.Deactivate(ctx, room.ID)
		deactivated <- err
	}()
	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-deactivated:
		t.Fatalf("deactivation ran while admission held the room lock: %v", err)
	default:
	}
	close(store.release)

	// Admission wins the lock ordering: the booking lands, and the
	// deactivation then sees it as a future booking and is refused.
	require.NoError(t, <-admitted)
	assert.ErrorIs(t, <-deactivated, booking.ErrHasFutureBookings)

	got, err := reg.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestCancelledBookingFreesTheSlot(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, b.ID, "u1", false)
	require.NoError(t, err)

	// The cancelled booking no longer blocks the slot.
	_, err = svc.RequestBooking(ctx, room.ID, "u2", at(clock, 9, 0), at(clock, 10, 0))
	assert.NoError(t, err)
}

func TestCancelBookingOwnership(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)

	// Someone else cannot cancel it.
	_, err = svc.CancelBooking(ctx, b.ID, "u2", false)
	assert.ErrorIs(t, err, booking.ErrNotOwner)

	// A privileged caller can.
	cancelled, err := svc.CancelBooking(ctx, b.ID, "admin", true)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// Cancelling again is a rejected transition, not a silent success.
	_, err = svc.CancelBooking(ctx, b.ID, "u1", false)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestConfirmThenCancelThenConfirm(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmBooking(ctx, b.ID, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, confirmed.Status)

	_, err = svc.CancelBooking(ctx, b.ID, "u1", false)
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(ctx, b.ID, "u1", false)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestGetBookingDerivesCompleted(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, b.ID, "u1", false)
	require.NoError(t, err)

	clock.Advance(6 * time.Hour)
	loaded, err := svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, loaded.Status)
}

func TestBookingNotFound(t *testing.T) {
	_, svc, _ := newEngine(t)
	_, err := svc.GetBooking(context.Background(), 42)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	_, err = svc.CancelBooking(context.Background(), 42, "u1", false)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}
