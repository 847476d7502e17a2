package booking

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Registry manages room identity and the active/inactive flag.  Rooms
// are created active, mutated only via Deactivate/Reactivate, and never
// physically deleted.  The registry only reads bookings (for the
// deactivation rule); it never writes them.
type Registry struct {
	store Store
	clock Clock
	locks *RoomLocks

	// numberMu serializes the active-number uniqueness check with the
	// write that depends on it; two concurrent creates of the same
	// number must not both pass the list-then-insert check.
	numberMu sync.Mutex
}

// NewRegistry constructs a Registry.  The locks instance must be the
// same one handed to the admission Service so that deactivation and
// admission serialize against each other per room.
func NewRegistry(store Store, clock Clock, locks *RoomLocks) *Registry {
	if store == nil || clock == nil || locks == nil {
		panic("nil dependency passed to NewRegistry")
	}
	return &Registry{store: store, clock: clock, locks: locks}
}

// CreateRoom validates the input and persists a new active room.  The
// ID is assigned by the store, never by the caller.  Location is
// optional listing metadata.  It returns ErrInvalidRoom when the number
// is empty, the capacity is not positive, the type is unknown, or an
// active room already uses the number.
func (r *Registry) CreateRoom(ctx context.Context, number string, capacity uint32, roomType model.RoomType, location *string) (*model.Room, error) {
	number = strings.TrimSpace(number)
	if number == "" || capacity == 0 || !roomType.Valid() {
		return nil, ErrInvalidRoom
	}
	r.numberMu.Lock()
	defer r.numberMu.Unlock()
	// Uniqueness is scoped to active rooms: a deactivated room's number
	// may be reused.
	active, err := r.store.ListRooms(ctx, RoomFilter{ActiveOnly: true})
	if err != nil {
		return nil, storageErr("list rooms", err)
	}
	for _, existing := range active {
		if strings.EqualFold(existing.Number, number) {
			return nil, ErrInvalidRoom
		}
	}
	room := &model.Room{
		Number:   number,
		Capacity: capacity,
		Type:     roomType,
		Location: location,
		IsActive: true,
	}
	if err := r.store.InsertRoom(ctx, room); err != nil {
		return nil, storageErr("insert room", err)
	}
	return room, nil
}

// GetRoom returns the room with the given ID or ErrRoomNotFound.
func (r *Registry) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := r.store.GetRoom(ctx, id)
	if err != nil {
		return nil, storageErr("get room", err)
	}
	return room, nil
}

// ListRooms returns rooms matching the filter.
func (r *Registry) ListRooms(ctx context.Context, f RoomFilter) ([]*model.Room, error) {
	rooms, err := r.store.ListRooms(ctx, f)
	if err != nil {
		return nil, storageErr("list rooms", err)
	}
	return rooms, nil
}

// Deactivate soft-deletes a room.  It fails with ErrHasFutureBookings
// when any PENDING or CONFIRMED booking on the room starts in the
// future; the check runs inside the room's critical section so it
// cannot race an in-flight admission.  Deactivating an already
// inactive room succeeds without effect.
func (r *Registry) Deactivate(ctx context.Context, id uint64) (*model.Room, error) {
	unlock := r.locks.lock(id)
	defer unlock()

	room, err := r.store.GetRoom(ctx, id)
	if err != nil {
		return nil, storageErr("get room", err)
	}
	if !room.IsActive {
		return room, nil
	}
	existing, err := r.store.LoadBookingsForRoom(ctx, id)
	if err != nil {
		return nil, storageErr("load bookings", err)
	}
	now := r.clock.Now()
	for _, b := range existing {
		if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
			continue
		}
		if b.StartsAt.After(now) {
			return nil, ErrHasFutureBookings
		}
	}
	room.IsActive = false
	if err := r.store.UpdateRoom(ctx, room); err != nil {
		return nil, storageErr("update room", err)
	}
	return room, nil
}

// Reactivate turns an inactive room back on.  It is a plain flag flip;
// number uniqueness against other active rooms is re-checked so a
// reused number cannot produce two active rooms with the same label.
func (r *Registry) Reactivate(ctx context.Context, id uint64) (*model.Room, error) {
	r.numberMu.Lock()
	defer r.numberMu.Unlock()
	room, err := r.store.GetRoom(ctx, id)
	if err != nil {
		return nil, storageErr("get room", err)
	}
	if room.IsActive {
		return room, nil
	}
	active, err := r.store.ListRooms(ctx, RoomFilter{ActiveOnly: true})
	if err != nil {
		return nil, storageErr("list rooms", err)
	}
	for _, existing := range active {
		if strings.EqualFold(existing.Number, room.Number) {
			return nil, ErrInvalidRoom
		}
	}
	room.IsActive = true
	if err := r.store.UpdateRoom(ctx, room); err != nil {
		return nil, storageErr("update room", err)
	}
	return room, nil
}
