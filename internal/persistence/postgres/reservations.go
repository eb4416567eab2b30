package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

const reservationColumns = `id, room_id, user_name, user_phone, password, start_time, end_time, created_at`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ListReservationsStartingBetween returns reservations with start_time in [from, to).
func (s *Storage) ListReservationsStartingBetween(ctx context.Context, from, to time.Time) ([]persistence.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC, id ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, mapError(err)
	}
	return collectReservations(rows)
}

// findOverlapping returns up to limit reservations of the room overlapping [start, end).
func findOverlapping(ctx context.Context, q queryer, roomID int64, start, end time.Time, limit int) ([]persistence.Reservation, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE room_id = $1 AND start_time < $2 AND end_time > $3
		ORDER BY start_time ASC
		LIMIT $4
	`, roomID, end.UTC(), start.UTC(), limit)
	if err != nil {
		return nil, mapError(err)
	}
	return collectReservations(rows)
}

// CreateReservation inserts the reservation unless it overlaps an existing
// one. A transaction-scoped advisory lock on the room id serialises creates
// for the same room across every connection and process.
func (s *Storage) CreateReservation(ctx context.Context, reservation persistence.Reservation) (persistence.Reservation, error) {
	var stored persistence.Reservation

	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, reservation.RoomID); err != nil {
			return fmt.Errorf("postgres: acquire room lock: %w", err)
		}

		overlapping, err := findOverlapping(ctx, tx, reservation.RoomID, reservation.StartTime, reservation.EndTime, 1)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return persistence.ErrOverlap
		}

		stored = reservation
		err = tx.QueryRowContext(ctx, `
			INSERT INTO reservations (room_id, user_name, user_phone, password, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`,
			reservation.RoomID,
			reservation.UserName,
			reservation.UserPhone,
			reservation.Password,
			reservation.StartTime.UTC(),
			reservation.EndTime.UTC(),
		).Scan(&stored.ID, &stored.CreatedAt)
		if err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return stored, nil
}

// FindReservations returns reservations matching the phone (and passcode when
// set), joined with their room, newest start first.
func (s *Storage) FindReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationWithRoom, error) {
	query := `
		SELECT r.id, r.room_id, r.user_name, r.user_phone, r.password, r.start_time, r.end_time, r.created_at,
		       m.id, m.name, m.location, m.capacity
		FROM reservations r
		JOIN meeting_rooms m ON m.id = r.room_id
		WHERE r.user_phone = $1`
	args := []any{filter.UserPhone}
	if filter.Password != nil {
		query += ` AND r.password = $2`
		args = append(args, *filter.Password)
	}
	query += `
		ORDER BY r.start_time DESC, r.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	results := make([]persistence.ReservationWithRoom, 0)
	for rows.Next() {
		var (
			item     persistence.ReservationWithRoom
			location sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.RoomID, &item.UserName, &item.UserPhone, &item.Password,
			&item.StartTime, &item.EndTime, &item.CreatedAt,
			&item.Room.ID, &item.Room.Name, &location, &item.Room.Capacity,
		); err != nil {
			return nil, mapError(err)
		}
		if location.Valid {
			value := location.String
			item.Room.Location = &value
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return results, nil
}

func collectReservations(rows *sql.Rows) ([]persistence.Reservation, error) {
	defer rows.Close()

	reservations := make([]persistence.Reservation, 0)
	for rows.Next() {
		var res persistence.Reservation
		if err := rows.Scan(&res.ID, &res.RoomID, &res.UserName, &res.UserPhone, &res.Password, &res.StartTime, &res.EndTime, &res.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}
