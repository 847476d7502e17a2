package booking

import (
	"context"
	"sort"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// ConflictPair reports two live bookings on the same room whose
// intervals overlap.  Such pairs should never exist when all writes go
// through the admission controller; the diagnostic surfaces rows
// created by older buggy paths or by direct store writes so an admin
// workflow can resolve them.
type ConflictPair struct {
	RoomID uint64
	First  *model.Booking
	Second *model.Booking
}

// ListConflicts scans PENDING and CONFIRMED bookings grouped by room
// and reports every overlapping pair.  Pass roomID 0 to scan all
// rooms.  Within a room, bookings are ordered ascending by start time
// and then by ID, and each pair is reported once with First preceding
// Second in that order.  The scan mutates nothing.
func (s *Service) ListConflicts(ctx context.Context, roomID uint64) ([]ConflictPair, error) {
	var roomIDs []uint64
	if roomID != 0 {
		if _, err := s.store.GetRoom(ctx, roomID); err != nil {
			return nil, storageErr("get room", err)
		}
		roomIDs = []uint64{roomID}
	} else {
		rooms, err := s.store.ListRooms(ctx, RoomFilter{})
		if err != nil {
			return nil, storageErr("list rooms", err)
		}
		for _, r := range rooms {
			roomIDs = append(roomIDs, r.ID)
		}
		sort.Slice(roomIDs, func(i, j int) bool { return roomIDs[i] < roomIDs[j] })
	}

	pairs := make([]ConflictPair, 0)
	for _, id := range roomIDs {
		all, err := s.store.LoadBookingsForRoom(ctx, id)
		if err != nil {
			return nil, storageErr("load bookings", err)
		}
		live := make([]*model.Booking, 0, len(all))
		for _, b := range all {
			if b.Status == model.BookingPending || b.Status == model.BookingConfirmed {
				live = append(live, b)
			}
		}
		sort.Slice(live, func(i, j int) bool {
			if !live[i].StartsAt.Equal(live[j].StartsAt) {
				return live[i].StartsAt.Before(live[j].StartsAt)
			}
			return live[i].ID < live[j].ID
		})
		for i := 0; i < len(live); i++ {
			for j := i + 1; j < len(live); j++ {
				if Overlaps(live[i].StartsAt, live[i].EndsAt, live[j].StartsAt, live[j].EndsAt) {
					pairs = append(pairs, ConflictPair{RoomID: id, First: live[i], Second: live[j]})
				}
			}
		}
	}
	return pairs, nil
}
