// Package memory provides an in-memory implementation of the booking
// Store.  It backs the engine in tests and in dev mode when no MySQL
// DSN is configured.  All methods copy records on the way in and out so
// callers can never alias the store's internal state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Store keeps rooms and bookings in maps guarded by a single mutex.
// IDs are assigned from monotonically increasing counters, mirroring
// the AUTO_INCREMENT behaviour of the MySQL adapter.
type Store struct {
	mu            sync.Mutex
	rooms         map[uint64]*model.Room
	bookings      map[uint64]*model.Booking
	nextRoomID    uint64
	nextBookingID uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		rooms:         make(map[uint64]*model.Room),
		bookings:      make(map[uint64]*model.Booking),
		nextRoomID:    1,
		nextBookingID: 1,
	}
}

func copyRoom(r *model.Room) *model.Room {
	cp := *r
	if r.Location != nil {
		loc := *r.Location
		cp.Location = &loc
	}
	return &cp
}

func copyBooking(b *model.Booking) *model.Booking {
	cp := *b
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		cp.CancelledAt = &at
	}
	return &cp
}

// GetRoom implements booking.Store.
func (s *Store) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, booking.ErrRoomNotFound
	}
	return copyRoom(r), nil
}

// InsertRoom implements booking.Store.  The assigned ID is written back
// onto the provided record.
func (s *Store) InsertRoom(ctx context.Context, r *model.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextRoomID
	s.nextRoomID++
	s.rooms[r.ID] = copyRoom(r)
	return nil
}

// UpdateRoom implements booking.Store.
func (s *Store) UpdateRoom(ctx context.Context, r *model.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; !ok {
		return booking.ErrRoomNotFound
	}
	s.rooms[r.ID] = copyRoom(r)
	return nil
}

// ListRooms implements booking.Store.  Results are ordered by room
// number for deterministic listings.
func (s *Store) ListRooms(ctx context.Context, f booking.RoomFilter) ([]*model.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Room, 0, len(s.rooms))
	needle := strings.ToLower(f.Location)
	for _, r := range s.rooms {
		if f.ActiveOnly && !r.IsActive {
			continue
		}
		if f.MinCapacity > 0 && r.Capacity < f.MinCapacity {
			continue
		}
		if needle != "" {
			if r.Location == nil || !strings.Contains(strings.ToLower(*r.Location), needle) {
				continue
			}
		}
		out = append(out, copyRoom(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// GetBooking implements booking.Store.
func (s *Store) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// LoadBookingsForRoom implements booking.Store.  Results are ordered by
// ID ascending, oldest first.
func (s *Store) LoadBookingsForRoom(ctx context.Context, roomID uint64) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Booking, 0)
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListBookingsByRequester implements booking.Store.  Results are
// ordered newest first.
func (s *Store) ListBookingsByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Booking, 0)
	for _, b := range s.bookings {
		if b.RequesterID == requesterID {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// InsertBooking implements booking.Store.  The overlap invariant and
// the room's active flag are re-checked under the store mutex before
// the row is written, so even a caller that skips the engine's
// per-room serialization cannot commit a conflicting booking or book a
// deactivated room.
func (s *Store) InsertBooking(ctx context.Context, b *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[b.RoomID]
	if !ok {
		return booking.ErrRoomNotFound
	}
	if b.Status == model.BookingPending || b.Status == model.BookingConfirmed {
		if !room.IsActive {
			return booking.ErrRoomInactive
		}
		for _, existing := range s.bookings {
			if existing.RoomID != b.RoomID {
				continue
			}
			if existing.Status != model.BookingPending && existing.Status != model.BookingConfirmed {
				continue
			}
			if booking.Overlaps(b.StartsAt, b.EndsAt, existing.StartsAt, existing.EndsAt) {
				return booking.ErrBookingConflict
			}
		}
	}
	b.ID = s.nextBookingID
	s.nextBookingID++
	s.bookings[b.ID] = copyBooking(b)
	return nil
}

// UpdateBooking implements booking.Store.
func (s *Store) UpdateBooking(ctx context.Context, b *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	s.bookings[b.ID] = copyBooking(b)
	return nil
}
