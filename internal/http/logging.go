package http

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	return logging.Component(ctx, fallback, "handler", handlerName, operation, attrs...)
}
