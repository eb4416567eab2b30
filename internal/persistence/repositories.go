package persistence

import (
	"context"
	"time"
)

// RoomRepository reads the meeting room catalog.
type RoomRepository interface {
	// ListRooms returns every room ordered by ascending id.
	ListRooms(ctx context.Context) ([]MeetingRoom, error)
	GetRoom(ctx context.Context, id int64) (MeetingRoom, error)
	// SeedRooms inserts rooms when the catalog is empty and reports how many were written.
	SeedRooms(ctx context.Context, rooms []MeetingRoom) (int, error)
}

// ReservationFilter selects reservations by credentials. A nil Password
// matches any stored passcode.
type ReservationFilter struct {
	UserPhone string
	Password  *string
}

// ReservationRepository stores reservations.
type ReservationRepository interface {
	// ListReservationsStartingBetween returns reservations whose start time is in [from, to).
	ListReservationsStartingBetween(ctx context.Context, from, to time.Time) ([]Reservation, error)
	// CreateReservation checks for overlaps and inserts within one transaction,
	// returning ErrOverlap instead of writing when the slot is taken.
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	// FindReservations returns matches joined with their room, newest start first.
	FindReservations(ctx context.Context, filter ReservationFilter) ([]ReservationWithRoom, error)
}

// Store bundles the repositories with lifecycle management.
type Store interface {
	RoomRepository
	ReservationRepository
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
