package scheduler

import (
	"testing"
	"time"
)

func TestDaySlots(t *testing.T) {
	day := time.Date(2024, time.May, 20, 15, 45, 0, 0, time.UTC)
	slots := DaySlots(day, time.UTC)

	if len(slots) != SlotCount {
		t.Fatalf("expected %d slots, got %d", SlotCount, len(slots))
	}
	if got := slots[0].Start; got.Hour() != 9 || got.Minute() != 0 {
		t.Fatalf("expected first slot at 09:00, got %s", got)
	}
	last := slots[len(slots)-1]
	if last.Start.Hour() != 18 || last.End.Hour() != 19 {
		t.Fatalf("expected last slot 18:00-19:00, got %s-%s", last.Start, last.End)
	}
	for i, slot := range slots {
		if slot.End.Sub(slot.Start) != time.Hour {
			t.Fatalf("slot %d is not one hour long", i)
		}
	}
}

func TestBuildTimeline(t *testing.T) {
	day := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{ID: 1, RoomID: 1, Holder: "alice", Interval: Interval{at(10, 0), at(11, 0)}},
		{ID: 2, RoomID: 1, Holder: "bob", Interval: Interval{at(13, 30), at(14, 30)}},
		{ID: 3, RoomID: 2, Holder: "carol", Interval: Interval{at(9, 0), at(10, 0)}},
	}

	slots := BuildTimeline(1, day, time.UTC, bookings)

	booked := map[int]string{}
	for _, slot := range slots {
		if slot.Booked {
			booked[slot.Hour] = slot.Booking.Holder
		}
	}

	want := map[int]string{10: "alice", 13: "bob", 14: "bob"}
	if len(booked) != len(want) {
		t.Fatalf("unexpected booked slots: %v", booked)
	}
	for hour, holder := range want {
		if booked[hour] != holder {
			t.Fatalf("expected %02d:00 booked by %s, got %q", hour, holder, booked[hour])
		}
	}
	if FreeSlots(slots) != SlotCount-3 {
		t.Fatalf("expected %d free slots, got %d", SlotCount-3, FreeSlots(slots))
	}
}

func TestBuildTimeline_EmptyDay(t *testing.T) {
	slots := BuildTimeline(7, time.Date(2024, time.May, 21, 0, 0, 0, 0, time.UTC), time.UTC, nil)
	if FreeSlots(slots) != SlotCount {
		t.Fatalf("expected all slots free, got %d", FreeSlots(slots))
	}
}
