// Package mysql implements the booking Store on MySQL using the same
// database/sql conventions as the rest of the codebase: constant query
// strings, ExecContext/QueryRowContext, LastInsertId followed by a
// query-back to populate database-assigned defaults, and sentinel
// errors for absent rows.  All timestamps are stored and compared in
// UTC; the connection DSN must set parseTime=true and loc=UTC.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/booking"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Store provides room and booking persistence backed by MySQL.
type Store struct {
	db *sql.DB
}

// New returns a Store bound to the given database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// GetRoom returns the room with the given ID or booking.ErrRoomNotFound.
func (s *Store) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT id, number, capacity, type, location, is_active, created_at, updated_at
	           FROM rooms WHERE id = ?`
	var r model.Room
	var roomType string
	var location sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.Number, &r.Capacity, &roomType, &location, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrRoomNotFound
		}
		return nil, err
	}
	r.Type = model.RoomType(roomType)
	if location.Valid {
		loc := location.String
		r.Location = &loc
	}
	return &r, nil
}

// InsertRoom persists a new room and populates the generated ID along
// with the database-assigned timestamps.
func (s *Store) InsertRoom(ctx context.Context, r *model.Room) error {
	const qInsert = `INSERT INTO rooms (number, capacity, type, location, is_active)
	                 VALUES (?, ?, ?, ?, ?)`
	var location sql.NullString
	if r.Location != nil && strings.TrimSpace(*r.Location) != "" {
		location = sql.NullString{String: strings.TrimSpace(*r.Location), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, qInsert, r.Number, r.Capacity, string(r.Type), location, r.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM rooms WHERE id = ?`
	return s.db.QueryRowContext(ctx, qSelect, r.ID).Scan(&r.CreatedAt, &r.UpdatedAt)
}

// UpdateRoom persists changes to an existing room.
func (s *Store) UpdateRoom(ctx context.Context, r *model.Room) error {
	const q = `UPDATE rooms SET number = ?, capacity = ?, type = ?, location = ?, is_active = ?
	           WHERE id = ?`
	var location sql.NullString
	if r.Location != nil {
		location = sql.NullString{String: *r.Location, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, q, r.Number, r.Capacity, string(r.Type), location, r.IsActive, r.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is zero both for absent rows and no-op updates;
		// distinguish with an existence probe.
		var one int
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, r.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrRoomNotFound
			}
			return err
		}
	}
	return nil
}

// ListRooms returns rooms matching the filter, ordered by number.  The
// WHERE clause is assembled from the filter's non-zero fields.
func (s *Store) ListRooms(ctx context.Context, f booking.RoomFilter) ([]*model.Room, error) {
	q := `SELECT id, number, capacity, type, location, is_active, created_at, updated_at FROM rooms`
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if f.ActiveOnly {
		conds = append(conds, "is_active = 1")
	}
	if f.MinCapacity > 0 {
		conds = append(conds, "capacity >= ?")
		args = append(args, f.MinCapacity)
	}
	if f.Location != "" {
		conds = append(conds, "LOWER(location) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Location)+"%")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY number"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Room, 0)
	for rows.Next() {
		var r model.Room
		var roomType string
		var location sql.NullString
		if err := rows.Scan(&r.ID, &r.Number, &r.Capacity, &roomType, &location, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Type = model.RoomType(roomType)
		if location.Valid {
			loc := location.String
			r.Location = &loc
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
