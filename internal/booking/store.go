package booking

import (
	"context"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// RoomFilter narrows ListRooms results.  Zero values mean "no
// constraint".  Location matching is a case-insensitive substring
// match; it is a listing convenience, not admission logic.
type RoomFilter struct {
	ActiveOnly  bool
	MinCapacity uint32
	Location    string
}

// Store is the single persistence collaborator of the engine.  The
// engine never assumes a specific storage technology; MySQL and
// in-memory adapters live under internal/store.
//
// InsertBooking must be atomic with respect to the conflict invariant:
// an implementation either relies on the engine's per-room
// serialization or re-checks overlap inside its own transaction and
// returns ErrBookingConflict.  A live insert on a deactivated room is
// refused with ErrRoomInactive.  Implementations return ErrRoomNotFound /
// ErrBookingNotFound for absent rows and plain infrastructure errors
// for everything else; the engine wraps the latter in *StorageError.
// All calls honor ctx cancellation and deadlines.
type Store interface {
	// GetRoom returns the room with the given ID or ErrRoomNotFound.
	GetRoom(ctx context.Context, id uint64) (*model.Room, error)
	// InsertRoom persists a new room and assigns its ID.
	InsertRoom(ctx context.Context, r *model.Room) error
	// UpdateRoom persists changes to an existing room.
	UpdateRoom(ctx context.Context, r *model.Room) error
	// ListRooms returns rooms matching the filter, ordered by number.
	ListRooms(ctx context.Context, f RoomFilter) ([]*model.Room, error)

	// GetBooking returns the booking with the given ID or ErrBookingNotFound.
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	// LoadBookingsForRoom returns every booking on the room, newest
	// last.  The engine filters by status itself.
	LoadBookingsForRoom(ctx context.Context, roomID uint64) ([]*model.Booking, error)
	// ListBookingsByRequester returns all bookings created by the
	// given requester, newest first.
	ListBookingsByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error)
	// InsertBooking persists a new booking and assigns its ID.  See
	// the interface comment for the atomicity contract.
	InsertBooking(ctx context.Context, b *model.Booking) error
	// UpdateBooking persists a lifecycle transition.
	UpdateBooking(ctx context.Context, b *model.Booking) error
}
