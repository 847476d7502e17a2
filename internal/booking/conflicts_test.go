package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/store/memory"
)

// flakyStore wraps the memory store and fails selected operations so
// tests can observe the StorageError path.
type flakyStore struct {
	*memory.Store
	failLoad bool
}

var errDiskOnFire = errors.New("disk on fire")

func (s *flakyStore) LoadBookingsForRoom(ctx context.Context, roomID uint64) ([]*model.Booking, error) {
	if s.failLoad {
		return nil, errDiskOnFire
	}
	return s.Store.LoadBookingsForRoom(ctx, roomID)
}

func TestStorageErrorIsDistinctFromDomainErrors(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	store := &flakyStore{Store: memory.New()}
	locks := booking.NewRoomLocks()
	reg := booking.NewRegistry(store, clock, locks)
	svc := booking.NewService(store, clock, locks, booking.DefaultGraceWindow)
	ctx := context.Background()

	room, err := reg.CreateRoom(ctx, "A101", 10, model.RoomTypeStandard, nil)
	require.NoError(t, err)

	store.failLoad = true
	_, err = svc.RequestBooking(ctx, room.ID, "u1", clock.Now().Add(time.Hour), clock.Now().Add(2*time.Hour))

	var storageErr *booking.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.ErrorIs(t, err, errDiskOnFire)
	assert.NotErrorIs(t, err, booking.ErrBookingConflict)

	// The failed admission left nothing behind: after the store heals,
	// the same slot is free.
	store.failLoad = false
	_, err = svc.RequestBooking(ctx, room.ID, "u1", clock.Now().Add(time.Hour), clock.Now().Add(2*time.Hour))
	assert.NoError(t, err)
}

// seedConflicts injects overlapping rows directly through the store,
// bypassing admission the way an older buggy write path would have.
func seedConflicts(t *testing.T, store *memory.Store, roomID uint64, clock *fakeClock) []uint64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]uint64, 0, 3)
	slots := []struct{ startMin, endMin int }{
		{0, 60},   // 09:00–10:00
		{30, 90},  // 09:30–10:30 overlaps the first
		{120, 180}, // 11:00–12:00 clean
	}
	base := at(clock, 9, 0)
	for _, s := range slots {
		b := &model.Booking{
			RoomID:      roomID,
			RequesterID: "seed",
			StartsAt:    base.Add(time.Duration(s.startMin) * time.Minute),
			EndsAt:      base.Add(time.Duration(s.endMin) * time.Minute),
			Status:      model.BookingPending,
			CreatedAt:   clock.Now(),
		}
		// The memory store refuses overlapping inserts, so seed the
		// clean row first and flip statuses afterwards.
		if err := store.InsertBooking(ctx, b); err != nil {
			// Overlap refused: insert as cancelled, then rewrite.
			b.Status = model.BookingCancelled
			require.NoError(t, store.InsertBooking(ctx, b))
			b.Status = model.BookingPending
			require.NoError(t, store.UpdateBooking(ctx, b))
		}
		ids = append(ids, b.ID)
	}
	return ids
}

func TestListConflictsReportsOverlappingPairs(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	store := memory.New()
	locks := booking.NewRoomLocks()
	reg := booking.NewRegistry(store, clock, locks)
	svc := booking.NewService(store, clock, locks, booking.DefaultGraceWindow)
	ctx := context.Background()

	room, err := reg.CreateRoom(ctx, "A101", 10, model.RoomTypeStandard, nil)
	require.NoError(t, err)
	ids := seedConflicts(t, store, room.ID, clock)

	pairs, err := svc.ListConflicts(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, room.ID, pairs[0].RoomID)
	// Reporting order: ascending by start, then by id.
	assert.Equal(t, ids[0], pairs[0].First.ID)
	assert.Equal(t, ids[1], pairs[0].Second.ID)

	// Scanning all rooms finds the same pair.
	pairs, err = svc.ListConflicts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)

	// Unknown rooms are reported, not silently empty.
	_, err = svc.ListConflicts(ctx, 999)
	assert.ErrorIs(t, err, booking.ErrRoomNotFound)
}

func TestListConflictsIgnoresCancelled(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	store := memory.New()
	locks := booking.NewRoomLocks()
	reg := booking.NewRegistry(store, clock, locks)
	svc := booking.NewService(store, clock, locks, booking.DefaultGraceWindow)
	ctx := context.Background()

	room, err := reg.CreateRoom(ctx, "A101", 10, model.RoomTypeStandard, nil)
	require.NoError(t, err)
	ids := seedConflicts(t, store, room.ID, clock)

	// Cancel one side of the overlapping pair; the report empties.
	_, err = svc.CancelBooking(ctx, ids[1], "seed", false)
	require.NoError(t, err)

	pairs, err := svc.ListConflicts(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
