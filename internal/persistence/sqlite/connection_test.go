package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func TestErrorMapper_MapError(t *testing.T) {
	mapper := NewErrorMapper()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, persistence.ErrNotFound},
		{"unique", errors.New("constraint failed: UNIQUE constraint failed: meeting_rooms.name (2067)"), persistence.ErrDuplicate},
		{"foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), persistence.ErrConstraintViolation},
		{"foreign key reference", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), persistence.ErrMissingReference},
		{"check", errors.New("CHECK constraint failed: capacity > 0"), persistence.ErrConstraintViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapper.MapError(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("MapError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}

	if got := mapper.MapError(errors.New("CHECK constraint failed: end_time > start_time")); errors.Is(got, persistence.ErrMissingReference) {
		t.Fatalf("check violation mapped to missing reference: %v", got)
	}

	plain := errors.New("disk I/O error")
	if got := mapper.MapError(plain); got != plain {
		t.Fatalf("expected unmapped error to pass through, got %v", got)
	}
	if mapper.MapError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestRetryHelper_RetriesLockedErrors(t *testing.T) {
	helper := NewRetryHelper(RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2})

	attempts := 0
	err := helper.WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("expected success on third attempt, got %d attempts (%v)", attempts, err)
	}

	attempts = 0
	err = helper.WithRetry(context.Background(), func() error {
		attempts++
		return persistence.ErrOverlap
	})
	if !errors.Is(err, persistence.ErrOverlap) || attempts != 1 {
		t.Fatalf("expected permanent error without retry, got %d attempts (%v)", attempts, err)
	}
}

func TestConnectionPool_WithTransactionRollsBack(t *testing.T) {
	pool, err := NewConnectionPool(DefaultConfig(filepath.Join(t.TempDir(), "tx.db")))
	if err != nil {
		t.Fatalf("NewConnectionPool: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if _, err := pool.DB().ExecContext(ctx, "CREATE TABLE items (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	sentinel := fmt.Errorf("abort")
	err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (id) VALUES (1)"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	var count int
	if err := pool.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestTimestampFormatting(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	local := time.Date(2024, 6, 3, 9, 0, 0, 0, kst)

	formatted := formatTime(local)
	if formatted != "2024-06-03T00:00:00.000000000Z" {
		t.Fatalf("expected UTC text, got %q", formatted)
	}
	parsed, err := parseTime(formatted)
	if err != nil || !parsed.Equal(local) {
		t.Fatalf("expected round trip, got %v (%v)", parsed, err)
	}

	fractional := local.Add(1500 * time.Millisecond)
	if got := formatTime(fractional); got != "2024-06-03T00:00:01.500000000Z" {
		t.Fatalf("expected fractional seconds, got %q", got)
	}
	if formatTime(fractional) <= formatTime(local.Add(time.Second)) {
		t.Fatalf("expected lexical order to follow time order")
	}

	// created_at defaults written by SQLite use whole seconds.
	if parsed, err := parseTime("2024-06-03T00:00:00Z"); err != nil || !parsed.Equal(local) {
		t.Fatalf("expected second-precision text to parse, got %v (%v)", parsed, err)
	}
	if _, err := parseTime("yesterday"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewConnectionPoolRequiresDSN(t *testing.T) {
	if _, err := NewConnectionPool(Config{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
