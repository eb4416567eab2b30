// Package calendar holds the selected-day state that drives the overview.
package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/scheduler"
)

// DayLayout is the query-string form of a selected day.
const DayLayout = "2006-01-02"

// Selector tracks the day currently displayed. The stored value is always a
// local midnight in the selector's location.
type Selector struct {
	mu  sync.RWMutex
	now func() time.Time
	loc *time.Location
	day time.Time
}

// NewSelector returns a selector initialised to today.
func NewSelector(now func() time.Time, loc *time.Location) *Selector {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Selector{now: now, loc: loc}
	s.day = scheduler.StartOfDay(now(), loc)
	return s
}

// Day returns the selected day.
func (s *Selector) Day() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.day
}

// Location returns the time zone used for day boundaries.
func (s *Selector) Location() *time.Location {
	return s.loc
}

// Set selects the day containing t.
func (s *Selector) Set(t time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = scheduler.StartOfDay(t, s.loc)
	return s.day
}

// Next advances one calendar day.
func (s *Selector) Next() time.Time {
	return s.shift(1)
}

// Prev retreats one calendar day.
func (s *Selector) Prev() time.Time {
	return s.shift(-1)
}

// Today resets the selection to the current day.
func (s *Selector) Today() time.Time {
	return s.Set(s.now())
}

// IsToday reports whether the selected day is the current day.
func (s *Selector) IsToday() bool {
	return s.Day().Equal(scheduler.StartOfDay(s.now(), s.loc))
}

// Label renders the selected day as "2006-01-02 (Mon)".
func (s *Selector) Label() string {
	return s.Day().Format("2006-01-02 (Mon)")
}

// String returns the selected day in DayLayout.
func (s *Selector) String() string {
	return FormatDay(s.Day())
}

func (s *Selector) shift(days int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	// AddDate keeps the wall clock at midnight across DST changes; renormalise anyway.
	s.day = scheduler.StartOfDay(s.day.AddDate(0, 0, days), s.loc)
	return s.day
}

// ParseDay parses a YYYY-MM-DD string as local midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("calendar: empty day")
	}
	day, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: parse day %q: %w", value, err)
	}
	return day, nil
}

// FormatDay renders t in DayLayout.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}
