package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/cache"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/metrics"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/postgres"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// app is the wired service: store, caches, services and the HTTP handler.
type app struct {
	Handler      http.Handler
	Store        persistence.Store
	Reservations *application.ReservationService
	Metrics      *metrics.Metrics

	redis  *redis.Client
	logger *slog.Logger
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.Store, err = openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err = a.Store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	if err = seedRooms(ctx, a.Store, cfg.RoomSeedFile, logger); err != nil {
		return nil, err
	}

	passcodes, err := application.PasscodeSchemeByName(cfg.PasscodeScheme)
	if err != nil {
		return nil, err
	}

	var roomCache application.RoomCache = application.NewMemoryRoomCache(cfg.RoomCacheTTL, nil)
	if cfg.Redis.Enabled() {
		a.redis, err = cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		roomCache = cache.NewRoomCache(a.redis, cache.DefaultKey, cfg.RoomCacheTTL, logger)
	}

	a.Metrics = metrics.New()

	rooms := application.NewRoomServiceWithLogger(newRoomRepositoryAdapter(a.Store), roomCache, logger)
	rooms.SetObserver(a.Metrics)

	a.Reservations = application.NewReservationServiceWithLogger(
		rooms,
		newReservationRepositoryAdapter(a.Store),
		passcodes,
		cfg.Location,
		nil,
		logger,
	)
	a.Reservations.SetObserver(a.Metrics)

	views, err := httptransport.NewViewHandler(a.Reservations, application.NewSubmissionGuard(0, nil, nil), logger)
	if err != nil {
		return nil, err
	}

	a.Handler = httptransport.NewRouter(httptransport.RouterConfig{
		API:             httptransport.NewAPIHandler(a.Reservations, logger),
		Views:           views,
		Metrics:         a.Metrics.Handler(),
		RequestObserver: a.Metrics,
		Health:          a.health,
		AllowedOrigins:  cfg.AllowedOrigins,
		Logger:          logger,
	})
	return a, nil
}

func (a *app) health(ctx context.Context) error {
	if err := a.Store.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases the store and the Redis connection. It is safe to call more
// than once.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis", "error", err)
		}
		a.redis = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.logger.Error("failed to close storage", "error", err)
		}
		a.Store = nil
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, nil
	case config.DriverSQLite, "":
		store, err := sqlite.Open(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// seedRooms fills an empty room catalog from the YAML seed file, if one is configured.
func seedRooms(ctx context.Context, store persistence.RoomRepository, path string, logger *slog.Logger) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	seeds, err := config.LoadRoomSeed(path)
	if err != nil {
		return err
	}

	rooms := make([]persistence.MeetingRoom, 0, len(seeds))
	for _, seed := range seeds {
		room := persistence.MeetingRoom{Name: seed.Name, Capacity: seed.Capacity}
		if seed.Location != "" {
			location := seed.Location
			room.Location = &location
		}
		rooms = append(rooms, room)
	}

	inserted, err := store.SeedRooms(ctx, rooms)
	if err != nil {
		return fmt.Errorf("seed rooms from %s: %w", path, err)
	}
	if inserted > 0 {
		logger.Info("room catalog seeded", "path", path, "rooms", inserted)
	} else {
		logger.Debug("room catalog already populated", "path", path)
	}
	return nil
}
