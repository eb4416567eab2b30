package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	_ "modernc.org/sqlite"
)

// timeLayout is the fixed-width UTC form used for TEXT timestamps so that
// lexical comparison in SQL matches chronological order. Fractional seconds
// are kept to the nanosecond with trailing zeros.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Config holds SQLite connection settings.
type Config struct {
	// DSN is a file path or a "file:" URI understood by modernc.org/sqlite.
	DSN string
	// BusyTimeout sets how long a statement waits on a locked database.
	BusyTimeout time.Duration
	// JournalMode sets the SQLite journal mode (WAL, DELETE, ...). Empty keeps the default.
	JournalMode string
}

// DefaultConfig returns the settings used by Open.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:         dsn,
		BusyTimeout: 5 * time.Second,
	}
}

// ConnectionPool owns the *sql.DB. SQLite allows a single writer, so the pool
// is pinned to one connection and writers queue on it instead of failing with
// "database is locked".
type ConnectionPool struct {
	db *sql.DB
}

// NewConnectionPool opens and configures the database.
func NewConnectionPool(config Config) (*ConnectionPool, error) {
	if strings.TrimSpace(config.DSN) == "" {
		return nil, errors.New("sqlite: dsn is required")
	}
	if err := ensureDirectory(config.DSN); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeout.Milliseconds()),
	}
	if config.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", config.JournalMode))
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &ConnectionPool{db: db}, nil
}

func ensureDirectory(dsn string) error {
	path := dsn
	if strings.HasPrefix(path, "file:") {
		path = strings.TrimPrefix(path, "file:")
		if idx := strings.IndexByte(path, '?'); idx >= 0 {
			path = path[:idx]
		}
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc is executed inside WithTransaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction runs fn in a transaction, committing on success and rolling
// back on error or panic.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) (err error) {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
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
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrorMapper maps SQLite driver errors onto persistence sentinels.
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError wraps err with the matching persistence sentinel, if any.
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case containsAny(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w: %v", persistence.ErrConstraintViolation, persistence.ErrMissingReference, err)
	case containsAny(msg, "CHECK constraint failed", "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}

func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// RetryConfig configures retry behaviour for transient lock errors.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry settings used by the repositories.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryHelper retries operations that fail with "database is locked".
type RetryHelper struct {
	config RetryConfig
}

// NewRetryHelper creates a new retry helper.
func NewRetryHelper(config RetryConfig) *RetryHelper {
	return &RetryHelper{config: config}
}

// WithRetry runs fn until it succeeds, fails permanently, or retries run out.
func (rh *RetryHelper) WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := rh.config.InitialDelay

	for attempt := 0; attempt <= rh.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * rh.config.BackoffFactor)
				if delay > rh.config.MaxDelay {
					delay = rh.config.MaxDelay
				}
			}
		}

		lastErr = fn()
		if lastErr == nil || !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", rh.config.MaxRetries, lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(err.Error(), "database is locked", "database table is locked", "SQLITE_BUSY")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}
