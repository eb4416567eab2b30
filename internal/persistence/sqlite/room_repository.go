package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
	}
}

const roomColumns = `id, name, location, capacity, created_at`

// ListRooms returns every room ordered by id.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.MeetingRoom, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `SELECT `+roomColumns+` FROM meeting_rooms ORDER BY id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.MeetingRoom, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rooms, nil
}

// GetRoom returns a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.MeetingRoom, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+roomColumns+` FROM meeting_rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.MeetingRoom{}, persistence.ErrNotFound
		}
		return persistence.MeetingRoom{}, r.mapper.MapError(err)
	}
	return room, nil
}

// SeedRooms inserts rooms only when the table is empty.
func (r *RoomRepository) SeedRooms(ctx context.Context, rooms []persistence.MeetingRoom) (int, error) {
	if len(rooms) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meeting_rooms`).Scan(&count); err != nil {
			return r.mapper.MapError(err)
		}
		if count > 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO meeting_rooms (name, location, capacity) VALUES (?, ?, ?)`)
		if err != nil {
			return r.mapper.MapError(err)
		}
		defer stmt.Close()

		for _, room := range rooms {
			if _, err := stmt.ExecContext(ctx, room.Name, nullableString(room.Location), room.Capacity); err != nil {
				return fmt.Errorf("seed room %q: %w", room.Name, r.mapper.MapError(err))
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.MeetingRoom, error) {
	var (
		room      persistence.MeetingRoom
		location  sql.NullString
		createdAt string
	)
	if err := row.Scan(&room.ID, &room.Name, &location, &room.Capacity, &createdAt); err != nil {
		return persistence.MeetingRoom{}, err
	}
	if location.Valid {
		value := location.String
		room.Location = &value
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return persistence.MeetingRoom{}, err
	}
	room.CreatedAt = parsed
	return room, nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
