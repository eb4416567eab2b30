// Package logging carries request-scoped slog loggers through contexts and
// builds the component loggers used by the service and HTTP layers.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// New returns a JSON logger writing records at or above level to w.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger previously attached to the context.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}

// Component returns the context logger, else fallback, else slog.Default,
// tagged with the component kind and name ("service", "ReservationService")
// and the operation when one is given.
func Component(ctx context.Context, fallback *slog.Logger, kind, name, operation string, attrs ...any) *slog.Logger {
	logger := FromContext(ctx)
	if logger == nil {
		logger = fallback
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := make([]any, 0, 4+len(attrs))
	pairs = append(pairs, kind, name)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}
