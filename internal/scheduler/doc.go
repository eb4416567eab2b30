// Package scheduler holds the booking time arithmetic: the half-open interval
// overlap predicate shared by the conflict check and the timeline, day windows
// in a booking time zone, and the fixed hourly slot grid.
package scheduler
