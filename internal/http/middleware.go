package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger attaches a request-scoped logger to the context and logs the
// outcome of every request. The chi request id is reused when present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			if id == "" {
				id = strconv.FormatUint(counter.Add(1), 10)
			}
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed",
				"status", statusOf(ww),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

type requestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// RequestMetrics reports each request's matched route pattern, status and
// latency to observer.
func RequestMetrics(observer requestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			observer.ObserveRequest(route, r.Method, statusOf(ww), time.Since(start))
		})
	}
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
