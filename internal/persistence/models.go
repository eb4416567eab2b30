package persistence

import "time"

// MeetingRoom is a row of the meeting_rooms table.
type MeetingRoom struct {
	ID        int64
	Name      string
	Location  *string
	Capacity  int
	CreatedAt time.Time
}

// Reservation is a row of the reservations table.
type Reservation struct {
	ID        int64
	RoomID    int64
	UserName  string
	UserPhone string
	// Password holds the passcode as stored: verbatim or as a hash, depending
	// on the configured passcode scheme.
	Password  string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// RoomSummary is the room projection joined onto lookup results.
type RoomSummary struct {
	ID       int64
	Name     string
	Location *string
	Capacity int
}

// ReservationWithRoom is a reservation joined with its room.
type ReservationWithRoom struct {
	Reservation
	Room RoomSummary
}
