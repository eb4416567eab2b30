package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// ListRooms returns every room ordered by id.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.MeetingRoom, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, location, capacity, created_at FROM meeting_rooms ORDER BY id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.MeetingRoom, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

// GetRoom returns a room by id.
func (s *Storage) GetRoom(ctx context.Context, id int64) (persistence.MeetingRoom, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, location, capacity, created_at FROM meeting_rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		return persistence.MeetingRoom{}, mapError(err)
	}
	return room, nil
}

// SeedRooms inserts rooms only when the table is empty.
func (s *Storage) SeedRooms(ctx context.Context, rooms []persistence.MeetingRoom) (int, error) {
	if len(rooms) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		// Serialise concurrent seeders started by several replicas.
		if _, err := tx.ExecContext(ctx, `LOCK TABLE meeting_rooms IN EXCLUSIVE MODE`); err != nil {
			return mapError(err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meeting_rooms`).Scan(&count); err != nil {
			return mapError(err)
		}
		if count > 0 {
			return nil
		}

		for _, room := range rooms {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO meeting_rooms (name, location, capacity) VALUES ($1, $2, $3)`,
				room.Name, nullableString(room.Location), room.Capacity,
			); err != nil {
				return fmt.Errorf("seed room %q: %w", room.Name, mapError(err))
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
		room     persistence.MeetingRoom
		location sql.NullString
	)
	if err := row.Scan(&room.ID, &room.Name, &location, &room.Capacity, &room.CreatedAt); err != nil {
		return persistence.MeetingRoom{}, err
	}
	if location.Valid {
		value := location.String
		room.Location = &value
	}
	return room, nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
