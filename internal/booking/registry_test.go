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
)

func TestCreateRoomValidation(t *testing.T) {
	reg, _, _ := newEngine(t)
	ctx := context.Background()

	_, err := reg.CreateRoom(ctx, "", 10, model.RoomTypeStandard, nil)
	assert.ErrorIs(t, err, booking.ErrInvalidRoom)

	_, err = reg.CreateRoom(ctx, "A101", 0, model.RoomTypeStandard, nil)
	assert.ErrorIs(t, err, booking.ErrInvalidRoom)

	_, err = reg.CreateRoom(ctx, "A101", 10, model.RoomType("GARAGE"), nil)
	assert.ErrorIs(t, err, booking.ErrInvalidRoom)

	room, err := reg.CreateRoom(ctx, "  A101  ", 10, model.RoomTypeConference, nil)
	require.NoError(t, err)
	assert.Equal(t, "A101", room.Number)
	assert.True(t, room.IsActive)
	assert.NotZero(t, room.ID)

	// Number uniqueness is scoped to active rooms and case-insensitive.
	_, err = reg.CreateRoom(ctx, "a101", 8, model.RoomTypeStandard, nil)
	assert.ErrorIs(t, err, booking.ErrInvalidRoom)
}

func TestDeactivateBlockedByFutureBooking(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)

	_, err = reg.Deactivate(ctx, room.ID)
	assert.ErrorIs(t, err, booking.ErrHasFutureBookings)

	// The room stays active after the refused deactivation.
	got, err := reg.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestDeactivateSucceedsOncePastOrCancelled(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, b.ID, "u1", false)
	require.NoError(t, err)

	got, err := reg.Deactivate(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Deactivating again is a no-op, not an error.
	got, err = reg.Deactivate(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDeactivateIgnoresPastBookings(t *testing.T) {
	reg, svc, clock := newEngine(t)
	room := mustRoom(t, reg, "A101", 10)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, room.ID, "u1", at(clock, 9, 0), at(clock, 10, 0))
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, b.ID, "u1", false)
	require.NoError(t, err)

	// Once the meeting is in the past it no longer blocks deactivation.
	clock.Advance(12 * time.Hour)
	got, err := reg.Deactivate(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestReactivate(t *testing.T) {
	reg, _, _ := newEngine(t)
	ctx := context.Background()
	room := mustRoom(t, reg, "A101", 10)

	_, err := reg.Deactivate(ctx, room.ID)
	require.NoError(t, err)

	got, err := reg.Reactivate(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = reg.Reactivate(ctx, 999)
	assert.ErrorIs(t, err, booking.ErrRoomNotFound)
}

func TestReactivateRefusesDuplicateNumber(t *testing.T) {
	reg, _, _ := newEngine(t)
	ctx := context.Background()

	first := mustRoom(t, reg, "A101", 10)
	_, err := reg.Deactivate(ctx, first.ID)
	require.NoError(t, err)

	// The number was freed by deactivation and reused.
	mustRoom(t, reg, "A101", 6)

	// Bringing the old room back would duplicate the active number.
	_, err = reg.Reactivate(ctx, first.ID)
	assert.ErrorIs(t, err, booking.ErrInvalidRoom)
}

func TestCreateRoomConcurrentDuplicateNumber(t *testing.T) {
	reg, _, _ := newEngine(t)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = reg.CreateRoom(context.Background(), "A101", 10, model.RoomTypeStandard, nil)
		}(i)
	}
	wg.Wait()

	created, refused := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, booking.ErrInvalidRoom):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, refused)

	active, err := reg.ListRooms(context.Background(), booking.RoomFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestListRoomsFilter(t *testing.T) {
	reg, _, _ := newEngine(t)
	ctx := context.Background()

	loc := "Building 2, floor 3"
	_, err := reg.CreateRoom(ctx, "A101", 4, model.RoomTypeStandard, &loc)
	require.NoError(t, err)
	big := mustRoom(t, reg, "B201", 20)
	_, err = reg.Deactivate(ctx, big.ID)
	require.NoError(t, err)

	all, err := reg.ListRooms(ctx, booking.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := reg.ListRooms(ctx, booking.RoomFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A101", active[0].Number)

	roomy, err := reg.ListRooms(ctx, booking.RoomFilter{MinCapacity: 10})
	require.NoError(t, err)
	require.Len(t, roomy, 1)
	assert.Equal(t, "B201", roomy[0].Number)

	byLoc, err := reg.ListRooms(ctx, booking.RoomFilter{Location: "building 2"})
	require.NoError(t, err)
	require.Len(t, byLoc, 1)
	assert.Equal(t, "A101", byLoc[0].Number)
}
