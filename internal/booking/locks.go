package booking

import "sync"

// RoomLocks serializes all mutations of a room's booking set.  Both the
// admission path (conflict check + insert) and the registry's
// deactivation check (read of future bookings) run inside the same
// per-room critical section, closing the check-then-commit window in
// which two requests could both pass the conflict check.  Locks are
// created lazily and never removed; the set of rooms is small and
// stable.
type RoomLocks struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewRoomLocks returns an empty lock set.  One instance is shared by
// the Service and the Registry constructed for the same Store.
func NewRoomLocks() *RoomLocks { return &RoomLocks{locks: make(map[uint64]*sync.Mutex)} }

// lock acquires the mutex for the given room, creating it on first use,
// and returns the unlock function.
func (l *RoomLocks) lock(roomID uint64) func() {
	l.mu.Lock()
	m, ok := l.locks[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[roomID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
