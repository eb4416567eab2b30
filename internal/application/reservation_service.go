package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/phone"
	"github.com/example/room-booking/internal/scheduler"
)

// ReservationRepository captures the persistence interactions needed by the service.
type ReservationRepository interface {
	ListReservationsStartingBetween(ctx context.Context, from, to time.Time) ([]Reservation, error)
	// CreateReservation must check for overlaps and insert atomically,
	// returning persistence.ErrOverlap when the slot is taken.
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	FindReservations(ctx context.Context, query ReservationQuery) ([]ReservationLookup, error)
}

// RoomDirectory exposes the room catalog.
type RoomDirectory interface {
	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
}

// RoomTimeline is one room's hourly grid for a day.
type RoomTimeline struct {
	Room  Room
	Slots []scheduler.Slot
}

// ReservationService is the booking data-access layer: room listing, the day
// view, conflict-checked creation and credential lookup.
type ReservationService struct {
	rooms        RoomDirectory
	reservations ReservationRepository
	passcodes    PasscodeScheme
	validator    *inputValidator
	loc          *time.Location
	now          func() time.Time
	observer     Observer
	logger       *slog.Logger
	locks        roomLocks
}

// NewReservationService wires dependencies for reservation operations. Day
// boundaries are computed in loc.
func NewReservationService(rooms RoomDirectory, reservations ReservationRepository, passcodes PasscodeScheme, loc *time.Location, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(rooms, reservations, passcodes, loc, now, nil)
}

// NewReservationServiceWithLogger wires dependencies with a specified logger.
func NewReservationServiceWithLogger(rooms RoomDirectory, reservations ReservationRepository, passcodes PasscodeScheme, loc *time.Location, now func() time.Time, logger *slog.Logger) *ReservationService {
	if passcodes == nil {
		passcodes = PlainPasscodes{}
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		rooms:        rooms,
		reservations: reservations,
		passcodes:    passcodes,
		validator:    newInputValidator(),
		loc:          loc,
		now:          now,
		observer:     nopObserver{},
		logger:       defaultLogger(logger),
	}
}

// SetObserver registers the receiver of create and lookup outcomes.
func (s *ReservationService) SetObserver(observer Observer) {
	if observer == nil {
		observer = nopObserver{}
	}
	s.observer = observer
}

// Location returns the booking time zone.
func (s *ReservationService) Location() *time.Location {
	return s.loc
}

// Now returns the service clock's current time.
func (s *ReservationService) Now() time.Time {
	return s.now()
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// ListRooms returns every room ordered by ascending id.
func (s *ReservationService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room directory not configured")
	}
	return s.rooms.ListRooms(ctx)
}

// ListReservationsForDay returns reservations whose start falls on the local
// day containing day, ordered by start time.
func (s *ReservationService) ListReservationsForDay(ctx context.Context, day time.Time) (reservations []Reservation, err error) {
	if s == nil || s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	window := scheduler.DayWindow(day, s.loc)
	logger := s.loggerWith(ctx, "ListReservationsForDay", "day", window.Start.Format("2006-01-02"))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).DebugContext(ctx, "reservations listed")
	}()

	reservations, err = s.reservations.ListReservationsStartingBetween(ctx, window.Start, window.End)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	for i := range reservations {
		reservations[i].StartTime = reservations[i].StartTime.In(s.loc)
		reservations[i].EndTime = reservations[i].EndTime.In(s.loc)
	}
	return
}

// CreateReservation validates the request, normalises the phone and stores
// the reservation unless it overlaps an existing one for the same room.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	if s == nil || s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"room_id", params.RoomID,
		"start_time", params.StartTime,
		"end_time", params.EndTime,
	)
	defer func() {
		s.observer.ReservationAttempt(outcomeFor(err))
		if err != nil {
			if errors.Is(err, ErrReservationConflict) {
				logger.WarnContext(ctx, "reservation conflict", "error_kind", ErrorKind(err))
				return
			}
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	params.StartTime = params.StartTime.Truncate(storePrecision)
	params.EndTime = params.EndTime.Truncate(storePrecision)

	vErr := s.validator.validateCreate(params)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.rooms != nil {
		if _, roomErr := s.rooms.GetRoom(ctx, params.RoomID); roomErr != nil {
			if errors.Is(roomErr, ErrNotFound) {
				vErr.add("room_id", "room does not exist")
				err = vErr
				return
			}
			err = roomErr
			return
		}
	}

	var stored string
	stored, err = s.passcodes.Encode(params.Passcode)
	if err != nil {
		err = fmt.Errorf("encode passcode: %w", err)
		return
	}

	candidate := Reservation{
		RoomID:    params.RoomID,
		UserName:  strings.TrimSpace(params.UserName),
		UserPhone: phone.Normalize(params.UserPhone),
		Passcode:  stored,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
	}

	unlock := s.locks.acquire(params.RoomID)
	defer unlock()

	reservation, err = s.reservations.CreateReservation(ctx, candidate)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	reservation.StartTime = reservation.StartTime.In(s.loc)
	reservation.EndTime = reservation.EndTime.In(s.loc)
	return
}

// FindReservations returns reservations matching the normalised phone and the
// passcode, most recent start first. An empty result is not an error.
func (s *ReservationService) FindReservations(ctx context.Context, params FindReservationsParams) (results []ReservationLookup, err error) {
	if s == nil || s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "FindReservations")
	defer func() {
		switch {
		case err != nil:
			if ErrorKind(err) == "validation" {
				s.observer.LookupAttempt(OutcomeInvalid)
			} else {
				s.observer.LookupAttempt(OutcomeError)
			}
			logger.ErrorContext(ctx, "failed to find reservations", "error", err, "error_kind", ErrorKind(err))
		case len(results) == 0:
			s.observer.LookupAttempt(LookupEmpty)
			logger.InfoContext(ctx, "no reservations matched")
		default:
			s.observer.LookupAttempt(LookupFound)
			logger.With("result_count", len(results)).InfoContext(ctx, "reservations found")
		}
	}()

	vErr := s.validator.validateLookup(params)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var candidates []ReservationLookup
	candidates, err = s.reservations.FindReservations(ctx, ReservationQuery{
		UserPhone: phone.Normalize(params.UserPhone),
		Passcode:  s.passcodes.StoredFilter(params.Passcode),
	})
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}

	results = make([]ReservationLookup, 0, len(candidates))
	for _, candidate := range candidates {
		if !s.passcodes.Matches(candidate.Passcode, params.Passcode) {
			continue
		}
		candidate.StartTime = candidate.StartTime.In(s.loc)
		candidate.EndTime = candidate.EndTime.In(s.loc)
		results = append(results, candidate)
	}
	return
}

// DayTimeline builds the hourly grid of every room for the day containing day.
func (s *ReservationService) DayTimeline(ctx context.Context, day time.Time) ([]RoomTimeline, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.ListReservationsForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	bookings := toBookings(reservations)
	timelines := make([]RoomTimeline, 0, len(rooms))
	for _, room := range rooms {
		timelines = append(timelines, RoomTimeline{
			Room:  room,
			Slots: scheduler.BuildTimeline(room.ID, day, s.loc, bookings),
		})
	}
	return timelines, nil
}

// RoomTimeline builds the hourly grid of one room for the day containing day.
func (s *ReservationService) RoomTimeline(ctx context.Context, roomID int64, day time.Time) (RoomTimeline, error) {
	if s == nil || s.rooms == nil {
		return RoomTimeline{}, fmt.Errorf("room directory not configured")
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return RoomTimeline{}, err
	}
	reservations, err := s.ListReservationsForDay(ctx, day)
	if err != nil {
		return RoomTimeline{}, err
	}
	return RoomTimeline{
		Room:  room,
		Slots: scheduler.BuildTimeline(room.ID, day, s.loc, toBookings(reservations)),
	}, nil
}

func toBookings(reservations []Reservation) []scheduler.Booking {
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

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrOverlap):
		return ErrReservationConflict
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrMissingReference):
		vErr := &ValidationError{}
		vErr.add("room_id", "room does not exist")
		return vErr
	}
	return err
}

// storePrecision is the finest timestamp resolution every store keeps
// (PostgreSQL timestamptz stops at microseconds).
const storePrecision = time.Microsecond

// roomLocks serialises creates per room within this process.
type roomLocks struct {
	mu    sync.Mutex
	locks map[int64]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func (l *roomLocks) acquire(roomID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*roomLock)
	}
	lock, ok := l.locks[roomID]
	if !ok {
		lock = &roomLock{}
		l.locks[roomID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, roomID)
		}
		l.mu.Unlock()
	}
}
