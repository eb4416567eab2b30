package application

import "time"

// Room is a bookable meeting room.
type Room struct {
	ID        int64
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
}

// HasLocation reports whether the room has a location on record.
func (r Room) HasLocation() bool {
	return r.Location != ""
}

// Reservation is a booking of one room for a half-open interval.
type Reservation struct {
	ID        int64
	RoomID    int64
	UserName  string
	UserPhone string
	// Passcode is the stored form of the passcode: verbatim or hashed.
	Passcode  string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// ReservationLookup is a reservation joined with the room it books.
type ReservationLookup struct {
	Reservation
	Room Room
}

// ReservationQuery narrows FindReservations in the repository. A nil Passcode
// matches any stored value.
type ReservationQuery struct {
	UserPhone string
	Passcode  *string
}

// CreateReservationParams is the input of ReservationService.CreateReservation.
type CreateReservationParams struct {
	RoomID    int64
	UserName  string
	UserPhone string
	Passcode  string
	StartTime time.Time
	EndTime   time.Time
}

// FindReservationsParams is the input of ReservationService.FindReservations.
type FindReservationsParams struct {
	UserPhone string
	Passcode  string
}
