package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/logging"
)

func main() {
	bootstrap := logging.New(os.Stdout, slog.LevelInfo)

	if err := config.LoadDotEnv(); err != nil {
		bootstrap.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking server listening",
		"addr", server.Addr,
		"store", cfg.StoreDriver,
		"timezone", cfg.Location.String(),
		"redis", cfg.Redis.Enabled(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		app.Close()
		os.Exit(1)
	}
}
