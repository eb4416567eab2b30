// Package postgres implements the booking store on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/migration"
)

// Storage is the PostgreSQL implementation of persistence.Store.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ persistence.Store = (*Storage)(nil)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return New(db, logger), nil
}

// New wraps an existing handle.
func New(db *sql.DB, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{db: db, logger: logger.With("store", "postgres")}
}

// Migrate applies the embedded PostgreSQL migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager, err := migration.NewManager(s.db, migration.Postgres, s.logger)
	if err != nil {
		return err
	}
	return manager.Run(ctx)
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SQLSTATE classes reported by lib/pq.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", persistence.ErrDuplicate, pqErr.Message)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %w: %s", persistence.ErrConstraintViolation, persistence.ErrMissingReference, pqErr.Message)
		case codeCheckViolation, codeNotNullViolation:
			return fmt.Errorf("%w: %s", persistence.ErrConstraintViolation, pqErr.Message)
		}
	}
	return err
}

func (s *Storage) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}
