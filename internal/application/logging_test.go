package application

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/example/room-booking/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}
	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerUsesRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	request := logging.New(&buf, slog.LevelInfo).With("request_id", "req-7")
	ctx := logging.ContextWithLogger(context.Background(), request)

	serviceLogger(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), "ReservationService", "FindReservations").
		Info("reservations found")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["service"] != "ReservationService" || record["operation"] != "FindReservations" || record["request_id"] != "req-7" {
		t.Fatalf("unexpected record %v", record)
	}
}
