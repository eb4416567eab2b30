package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const reservationColumns = `id, room_id, user_name, user_phone, password, start_time, end_time, created_at`

// ListReservationsStartingBetween returns reservations with start_time in [from, to).
func (r *ReservationRepository) ListReservationsStartingBetween(ctx context.Context, from, to time.Time) ([]persistence.Reservation, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC, id ASC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return r.collect(rows)
}

// findOverlapping returns up to limit reservations of the room overlapping [start, end).
func (r *ReservationRepository) findOverlapping(ctx context.Context, q queryer, roomID int64, start, end time.Time, limit int) ([]persistence.Reservation, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE room_id = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time ASC
		LIMIT ?
	`, roomID, formatTime(end), formatTime(start), limit)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return r.collect(rows)
}

// CreateReservation inserts the reservation unless it overlaps an existing one.
// The overlap check and the insert share a transaction.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) (persistence.Reservation, error) {
	var stored persistence.Reservation

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			overlapping, err := r.findOverlapping(ctx, tx, reservation.RoomID, reservation.StartTime, reservation.EndTime, 1)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return persistence.ErrOverlap
			}

			var (
				id        int64
				createdAt string
			)
			err = tx.QueryRowContext(ctx, `
				INSERT INTO reservations (room_id, user_name, user_phone, password, start_time, end_time)
				VALUES (?, ?, ?, ?, ?, ?)
				RETURNING id, created_at
			`,
				reservation.RoomID,
				reservation.UserName,
				reservation.UserPhone,
				reservation.Password,
				formatTime(reservation.StartTime),
				formatTime(reservation.EndTime),
			).Scan(&id, &createdAt)
			if err != nil {
				return r.mapper.MapError(err)
			}

			parsed, err := parseTime(createdAt)
			if err != nil {
				return err
			}

			stored = reservation
			stored.ID = id
			stored.StartTime = reservation.StartTime.UTC()
			stored.EndTime = reservation.EndTime.UTC()
			stored.CreatedAt = parsed
			return nil
		})
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return stored, nil
}

// FindReservations returns reservations matching the phone (and passcode when
// set), joined with their room, newest start first.
func (r *ReservationRepository) FindReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationWithRoom, error) {
	var (
		clauses = []string{"r.user_phone = ?"}
		args    = []any{filter.UserPhone}
	)
	if filter.Password != nil {
		clauses = append(clauses, "r.password = ?")
		args = append(args, *filter.Password)
	}

	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT r.id, r.room_id, r.user_name, r.user_phone, r.password, r.start_time, r.end_time, r.created_at,
		       m.id, m.name, m.location, m.capacity
		FROM reservations r
		JOIN meeting_rooms m ON m.id = r.room_id
		WHERE `+strings.Join(clauses, " AND ")+`
		ORDER BY r.start_time DESC, r.id DESC
	`, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	results := make([]persistence.ReservationWithRoom, 0)
	for rows.Next() {
		var (
			item                persistence.ReservationWithRoom
			start, end, created string
			location            sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.RoomID, &item.UserName, &item.UserPhone, &item.Password, &start, &end, &created,
			&item.Room.ID, &item.Room.Name, &location, &item.Room.Capacity,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if err := applyTimes(&item.Reservation, start, end, created); err != nil {
			return nil, err
		}
		if location.Valid {
			value := location.String
			item.Room.Location = &value
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return results, nil
}

func (r *ReservationRepository) collect(rows *sql.Rows) ([]persistence.Reservation, error) {
	defer rows.Close()

	reservations := make([]persistence.Reservation, 0)
	for rows.Next() {
		var (
			res                 persistence.Reservation
			start, end, created string
		)
		if err := rows.Scan(&res.ID, &res.RoomID, &res.UserName, &res.UserPhone, &res.Password, &start, &end, &created); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if err := applyTimes(&res, start, end, created); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

func applyTimes(res *persistence.Reservation, start, end, created string) error {
	var err error
	if res.StartTime, err = parseTime(start); err != nil {
		return err
	}
	if res.EndTime, err = parseTime(end); err != nil {
		return err
	}
	if res.CreatedAt, err = parseTime(created); err != nil {
		return err
	}
	return nil
}
