package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/scheduler"
)

var kst = time.FixedZone("KST", 9*60*60)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, kst)
}

// fakeService is an in-memory reservationService.
type fakeService struct {
	mu  sync.Mutex
	now time.Time

	rooms        []application.Room
	reservations []application.Reservation
	lookups      []application.ReservationLookup

	created   []application.CreateReservationParams
	lookedUp  []application.FindReservationsParams
	createErr error
	lookupErr error
	listErr   error
}

func newFakeService() *fakeService {
	return &fakeService{
		now: at(3, 8),
		rooms: []application.Room{
			{ID: 1, Name: "회의실 A", Location: "3층", Capacity: 6},
			{ID: 2, Name: "회의실 B", Capacity: 10},
		},
	}
}

func (f *fakeService) Location() *time.Location { return kst }
func (f *fakeService) Now() time.Time           { return f.now }

func (f *fakeService) ListRooms(context.Context) ([]application.Room, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rooms, nil
}

func (f *fakeService) ListReservationsForDay(_ context.Context, day time.Time) ([]application.Reservation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	window := scheduler.DayWindow(day, kst)
	var out []application.Reservation
	for _, r := range f.reservations {
		if !r.StartTime.Before(window.Start) && r.StartTime.Before(window.End) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeService) CreateReservation(_ context.Context, params application.CreateReservationParams) (application.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, params)
	if f.createErr != nil {
		return application.Reservation{}, f.createErr
	}
	reservation := application.Reservation{
		ID:        int64(len(f.created)),
		RoomID:    params.RoomID,
		UserName:  params.UserName,
		UserPhone: params.UserPhone,
		Passcode:  params.Passcode,
		StartTime: params.StartTime.In(kst),
		EndTime:   params.EndTime.In(kst),
		CreatedAt: f.now,
	}
	f.reservations = append(f.reservations, reservation)
	return reservation, nil
}

func (f *fakeService) FindReservations(_ context.Context, params application.FindReservationsParams) ([]application.ReservationLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookedUp = append(f.lookedUp, params)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.lookups, nil
}

func (f *fakeService) DayTimeline(ctx context.Context, day time.Time) ([]application.RoomTimeline, error) {
	reservations, err := f.ListReservationsForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	var timelines []application.RoomTimeline
	for _, room := range f.rooms {
		timelines = append(timelines, application.RoomTimeline{
			Room:  room,
			Slots: scheduler.BuildTimeline(room.ID, day, kst, bookingsOf(reservations)),
		})
	}
	return timelines, nil
}

func (f *fakeService) RoomTimeline(ctx context.Context, roomID int64, day time.Time) (application.RoomTimeline, error) {
	for _, room := range f.rooms {
		if room.ID != roomID {
			continue
		}
		reservations, err := f.ListReservationsForDay(ctx, day)
		if err != nil {
			return application.RoomTimeline{}, err
		}
		return application.RoomTimeline{
			Room:  room,
			Slots: scheduler.BuildTimeline(room.ID, day, kst, bookingsOf(reservations)),
		}, nil
	}
	return application.RoomTimeline{}, application.ErrNotFound
}

func (f *fakeService) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func bookingsOf(reservations []application.Reservation) []scheduler.Booking {
	bookings := make([]scheduler.Booking, 0, len(reservations))
	for _, r := range reservations {
		bookings = append(bookings, scheduler.Booking{
			ID:       r.ID,
			RoomID:   r.RoomID,
			Holder:   r.UserName,
			Interval: scheduler.Interval{Start: r.StartTime, End: r.EndTime},
		})
	}
	return bookings
}

func newTestRouter(t *testing.T, service *fakeService, guard submissionGuard) http.Handler {
	t.Helper()
	if guard == nil {
		guard = application.NewSubmissionGuard(time.Hour, nil, nil)
	}
	views, err := NewViewHandler(service, guard, discardLogger())
	if err != nil {
		t.Fatalf("NewViewHandler returned error: %v", err)
	}
	return NewRouter(RouterConfig{
		API:    NewAPIHandler(service, discardLogger()),
		Views:  views,
		Logger: discardLogger(),
	})
}
