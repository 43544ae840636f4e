package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/roomsteady/bookings-api/config"
	"github.com/roomsteady/bookings-api/data"
	"github.com/roomsteady/bookings-api/handlers"
	"github.com/roomsteady/bookings-api/health"
	"github.com/roomsteady/bookings-api/logging"
	"github.com/roomsteady/bookings-api/metrics"
	"github.com/roomsteady/bookings-api/scheduler"
	"github.com/roomsteady/bookings-api/server"
	"github.com/roomsteady/bookings-api/validation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not an error in containerized deployments, config comes from
		// the environment directly.
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", logging.ParseLevel(cfg.LogLevel), cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	sweepInterval := time.Duration(cfg.SweepIntervalMinutes) * time.Minute
	retention := time.Duration(cfg.BookingRetentionDays) * 24 * time.Hour

	store := data.NewBookingStore()
	recorder := metrics.NewRecorder(cfg.ServiceName, cfg.MetricsBuckets)
	checker := health.NewHealthChecker(store, sweepInterval)
	handler := handlers.NewBookingHandler(store, validation.NewBookingValidator(), checker)

	sched := scheduler.NewScheduler(store, sweepInterval, retention)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, handler, recorder)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
	}
}
