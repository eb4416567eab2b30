package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

var (
	roomCounter        uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomOption configures the generated room fixture.
type RoomOption func(*persistence.MeetingRoom)

// NewRoom returns a deterministic meeting room with optional overrides. The
// ID is left zero so the store assigns it.
func NewRoom(opts ...RoomOption) persistence.MeetingRoom {
	idx := atomic.AddUint64(&roomCounter, 1)
	location := fmt.Sprintf("%d층", idx)
	room := persistence.MeetingRoom{
		Name:     fmt.Sprintf("회의실 %03d", idx),
		Location: &location,
		Capacity: 4 + int(idx%8),
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomName overrides the generated name.
func WithRoomName(name string) RoomOption {
	return func(r *persistence.MeetingRoom) {
		r.Name = name
	}
}

// WithRoomLocation overrides the generated location.
func WithRoomLocation(location string) RoomOption {
	return func(r *persistence.MeetingRoom) {
		r.Location = &location
	}
}

// WithoutRoomLocation clears the location.
func WithoutRoomLocation() RoomOption {
	return func(r *persistence.MeetingRoom) {
		r.Location = nil
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(r *persistence.MeetingRoom) {
		r.Capacity = capacity
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*persistence.Reservation)

// NewReservation returns a one-hour reservation of roomID starting at start.
func NewReservation(roomID int64, start time.Time, opts ...ReservationOption) persistence.Reservation {
	idx := atomic.AddUint64(&reservationCounter, 1)
	reservation := persistence.Reservation{
		RoomID:    roomID,
		UserName:  fmt.Sprintf("사용자 %03d", idx),
		UserPhone: fmt.Sprintf("010%08d", idx),
		Password:  "1234",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
	for _, opt := range opts {
		opt(&reservation)
	}
	return reservation
}

// WithHolder overrides the holder's name and phone.
func WithHolder(name, phone string) ReservationOption {
	return func(r *persistence.Reservation) {
		r.UserName = name
		r.UserPhone = phone
	}
}

// WithPasscode overrides the stored passcode.
func WithPasscode(passcode string) ReservationOption {
	return func(r *persistence.Reservation) {
		r.Password = passcode
	}
}

// WithEnd overrides the end time.
func WithEnd(end time.Time) ReservationOption {
	return func(r *persistence.Reservation) {
		r.EndTime = end
	}
}
