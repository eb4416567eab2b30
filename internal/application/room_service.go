package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
}

// RoomService serves the room catalog through a cache.
type RoomService struct {
	rooms    RoomRepository
	cache    RoomCache
	observer Observer
	logger   *slog.Logger
}

// NewRoomService constructs a room service. A nil cache disables caching.
func NewRoomService(rooms RoomRepository, cache RoomCache) *RoomService {
	return NewRoomServiceWithLogger(rooms, cache, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, cache RoomCache, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, cache: cache, observer: nopObserver{}, logger: defaultLogger(logger)}
}

// SetObserver registers the receiver of cache hit/miss events.
func (s *RoomService) SetObserver(observer Observer) {
	if observer == nil {
		observer = nopObserver{}
	}
	s.observer = observer
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// ListRooms returns every room ordered by ascending id.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			s.observer.RoomCacheAccess(true)
			return cached, nil
		}
		s.observer.RoomCacheAccess(false)
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms loaded")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	rooms = make([]Room, len(raw))
	copy(rooms, raw)
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	if s.cache != nil {
		s.cache.Store(ctx, rooms)
	}
	return
}

// GetRoom returns one room, preferring the cached catalog.
func (s *RoomService) GetRoom(ctx context.Context, id int64) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return Room{}, err
	}
	for _, room := range rooms {
		if room.ID == id {
			return room, nil
		}
	}
	if s.rooms == nil {
		return Room{}, ErrNotFound
	}

	// Rooms added after the cache was filled.
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return room, nil
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
