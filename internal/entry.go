// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jjacobsen/almanak/internal/api"
	"github.com/jjacobsen/almanak/internal/eventservice"
	"github.com/jjacobsen/almanak/internal/notify"
	"github.com/jjacobsen/almanak/internal/remote"
	"github.com/jjacobsen/almanak/internal/sse"
	"github.com/jjacobsen/almanak/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("holiday_base", cfg.Holiday.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize SQLite store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(cfg.Stream.RefreshInterval)
	defer broker.Close()

	// Reminder scheduling and the calendar service.
	scheduler := notify.NewLogScheduler(logger)
	svc, err := eventservice.NewService(db, scheduler, broker, logger)
	if err != nil {
		return fmt.Errorf("init event service: %w", err)
	}

	// Remote read-through caches.
	holidays := remote.NewHolidayService(db, cfg.Holiday.BaseURL, nil, logger)
	dayInfo := remote.NewDayInfoService(db, cfg.DayInfo.BaseURL, nil, logger)

	apiRouter := api.NewRouter(svc, holidays, dayInfo,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Warm the holiday cache for the current and next year. Detached from
	// startup: preload failures degrade to cache misses, never abort the run.
	warmHolidays := func(ctx context.Context) {
		year := time.Now().Year()
		holidays.Preload(ctx, year)
		holidays.Preload(ctx, year+1)
	}
	g.Go(func() error {
		warmHolidays(gCtx)
		return nil
	})

	// Re-run the warm-up on a daily schedule so year rollover needs no restart.
	warmCron := cron.New()
	if _, err := warmCron.AddFunc(cfg.Holiday.WarmSchedule, func() { warmHolidays(gCtx) }); err != nil {
		return fmt.Errorf("schedule holiday warm-up: %w", err)
	}
	warmCron.Start()
	defer warmCron.Stop()

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
