package scheduler

import "time"

const (
	// FirstSlotHour is the start hour of the first bookable slot.
	FirstSlotHour = 9
	// SlotCount is the number of hourly slots per day (09:00 through 18:00 starts).
	SlotCount = 10
)

// Slot is one hourly cell of a room's timeline.
type Slot struct {
	Hour     int
	Interval Interval
	Booked   bool
	// Booking is the first overlapping reservation when Booked is true.
	Booking Booking
}

// DaySlots returns the fixed hourly intervals for the day containing day.
func DaySlots(day time.Time, loc *time.Location) []Interval {
	midnight := StartOfDay(day, loc)
	slots := make([]Interval, 0, SlotCount)
	for i := 0; i < SlotCount; i++ {
		hour := FirstSlotHour + i
		start := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), hour, 0, 0, 0, midnight.Location())
		slots = append(slots, Interval{Start: start, End: start.Add(time.Hour)})
	}
	return slots
}

// BuildTimeline marks each hourly slot of the day as booked or free for roomID.
// Bookings for other rooms are ignored.
func BuildTimeline(roomID int64, day time.Time, loc *time.Location, bookings []Booking) []Slot {
	intervals := DaySlots(day, loc)
	slots := make([]Slot, 0, len(intervals))
	for i, interval := range intervals {
		slot := Slot{Hour: FirstSlotHour + i, Interval: interval}
		if booking, ok := FirstConflict(bookings, roomID, interval); ok {
			slot.Booked = true
			slot.Booking = booking
		}
		slots = append(slots, slot)
	}
	return slots
}

// FreeSlots returns the number of unbooked slots.
func FreeSlots(slots []Slot) int {
	free := 0
	for _, slot := range slots {
		if !slot.Booked {
			free++
		}
	}
	return free
}
