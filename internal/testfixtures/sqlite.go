package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides a migrated SQLite store in a temporary directory for
// integration-style tests.
type SQLiteHarness struct {
	Store *sqlite.Storage

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a fresh database. Callers may invoke
// Close, but the helper also registers a cleanup callback with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.Open(path, logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedRooms inserts rooms and returns them with their assigned ids.
func (h *SQLiteHarness) SeedRooms(tb testing.TB, rooms ...persistence.MeetingRoom) []persistence.MeetingRoom {
	tb.Helper()
	ctx := context.Background()

	if _, err := h.Store.SeedRooms(ctx, rooms); err != nil {
		tb.Fatalf("failed to seed rooms: %v", err)
	}
	stored, err := h.Store.ListRooms(ctx)
	if err != nil {
		tb.Fatalf("failed to list rooms: %v", err)
	}
	return stored
}

// SeedReservation stores a reservation and returns the persisted row.
func (h *SQLiteHarness) SeedReservation(tb testing.TB, reservation persistence.Reservation) persistence.Reservation {
	tb.Helper()

	stored, err := h.Store.CreateReservation(context.Background(), reservation)
	if err != nil {
		tb.Fatalf("failed to seed reservation: %v", err)
	}
	return stored
}
