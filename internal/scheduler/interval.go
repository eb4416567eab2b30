package scheduler

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval has a positive length.
func (i Interval) Valid() bool {
	return !i.Start.IsZero() && !i.End.IsZero() && i.Start.Before(i.End)
}

// Overlaps reports whether two half-open intervals share at least one instant.
// Adjacent intervals such as [10:00,11:00) and [11:00,12:00) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Booking is the minimal view of a reservation needed for conflict checks.
type Booking struct {
	ID     int64
	RoomID int64
	Holder string
	Interval
}

// FirstConflict returns the first booking for the candidate's room that
// overlaps the candidate interval.
func FirstConflict(existing []Booking, roomID int64, candidate Interval) (Booking, bool) {
	for _, booking := range existing {
		if booking.RoomID != roomID {
			continue
		}
		if booking.Overlaps(candidate) {
			return booking, true
		}
	}
	return Booking{}, false
}

// StartOfDay returns local midnight of t in loc. A nil loc keeps t's location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DayWindow returns [local midnight, next local midnight) for the day containing t.
func DayWindow(t time.Time, loc *time.Location) Interval {
	start := StartOfDay(t, loc)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}
