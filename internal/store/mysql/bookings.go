package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

const dbTimeLayout = "2006-01-02 15:04:05"

func scanBooking(scan func(dest ...interface{}) error) (*model.Booking, error) {
	var b model.Booking
	var status string
	var cancelledAt sql.NullTime
	if err := scan(&b.ID, &b.RoomID, &b.RequesterID, &b.StartsAt, &b.EndsAt, &status, &b.CreatedAt, &cancelledAt); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if cancelledAt.Valid {
		at := cancelledAt.Time.UTC()
		b.CancelledAt = &at
	}
	return &b, nil
}

const bookingColumns = `id, room_id, requester_id, starts_at, ends_at, status, created_at, cancelled_at`

// GetBooking returns the booking with the given ID or
// booking.ErrBookingNotFound.
func (s *Store) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(s.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// LoadBookingsForRoom returns every booking on the room, oldest first.
func (s *Store) LoadBookingsForRoom(ctx context.Context, roomID uint64) ([]*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? ORDER BY id`
	return s.queryBookings(ctx, q, roomID)
}

// ListBookingsByRequester returns all bookings created by the given
// requester, newest first.
func (s *Store) ListBookingsByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE requester_id = ? ORDER BY id DESC`
	return s.queryBookings(ctx, q, requesterID)
}

func (s *Store) queryBookings(ctx context.Context, q string, arg interface{}) ([]*model.Booking, error) {
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertBooking persists a new booking inside a transaction that locks
// the room row, re-checks that the room is still active, and re-checks
// the overlap invariant with the conflicting rows locked
// (SELECT ... FOR UPDATE).  If the room is inactive or a live booking
// overlaps the requested slot the transaction rolls back with
// booking.ErrRoomInactive or booking.ErrBookingConflict, so even
// writers that bypass the engine's per-room serialization cannot book
// a deactivated room or commit a double booking.  On success the
// generated ID and created_at are written back onto b.
func (s *Store) InsertBooking(ctx context.Context, b *model.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Locking the room row serializes this insert against a concurrent
	// deactivation at the database level and re-checks the active flag
	// inside the same transaction as the overlap scan.
	const roomQ = `SELECT is_active FROM rooms WHERE id = ? FOR UPDATE`
	var active bool
	if err := tx.QueryRowContext(ctx, roomQ, b.RoomID).Scan(&active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrRoomNotFound
		}
		return err
	}
	if !active {
		return booking.ErrRoomInactive
	}

	const overlapQ = `SELECT COUNT(*) FROM bookings
	                  WHERE room_id = ? AND status IN ('PENDING','CONFIRMED')
	                    AND starts_at < ? AND ends_at > ?
	                  FOR UPDATE`
	var clashes int
	err = tx.QueryRowContext(ctx, overlapQ, b.RoomID,
		b.EndsAt.UTC().Format(dbTimeLayout), b.StartsAt.UTC().Format(dbTimeLayout),
	).Scan(&clashes)
	if err != nil {
		return err
	}
	if clashes > 0 {
		return booking.ErrBookingConflict
	}

	const qInsert = `INSERT INTO bookings (room_id, requester_id, starts_at, ends_at, status, created_at)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qInsert, b.RoomID, b.RequesterID,
		b.StartsAt.UTC().Format(dbTimeLayout), b.EndsAt.UTC().Format(dbTimeLayout),
		string(b.Status), b.CreatedAt.UTC().Format(dbTimeLayout),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateBooking persists a lifecycle transition.  Only status and
// cancelled_at ever change after creation.
func (s *Store) UpdateBooking(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings SET status = ?, cancelled_at = ? WHERE id = ?`
	var cancelledAt sql.NullString
	if b.CancelledAt != nil {
		cancelledAt = sql.NullString{String: b.CancelledAt.UTC().Format(dbTimeLayout), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, q, string(b.Status), cancelledAt, b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, b.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrBookingNotFound
			}
			return err
		}
	}
	return nil
}
