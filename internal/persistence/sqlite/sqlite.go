package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/migration"
)

// Storage is the SQLite implementation of persistence.Store.
type Storage struct {
	*RoomRepository
	*ReservationRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var _ persistence.Store = (*Storage)(nil)

// Open connects to the SQLite database at dsn using DefaultConfig.
func Open(dsn string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(DefaultConfig(dsn), logger)
}

// OpenWithConfig connects using explicit settings.
func OpenWithConfig(config Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		RoomRepository:        NewRoomRepository(pool),
		ReservationRepository: NewReservationRepository(pool),
		pool:                  pool,
		logger:                logger.With("store", "sqlite"),
	}, nil
}

// Migrate applies the embedded SQLite migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager, err := migration.NewManager(s.pool.DB(), migration.SQLite, s.logger)
	if err != nil {
		return err
	}
	return manager.Run(ctx)
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
