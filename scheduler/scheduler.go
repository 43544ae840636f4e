// Package scheduler runs the background maintenance jobs for the bookings
// API: the periodic store sweep and a staleness watchdog.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/roomsteady/bookings-api/interfaces"
	"github.com/roomsteady/bookings-api/logging"
)

// Compile-time check to ensure Scheduler implements the interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler drives periodic booking maintenance using gocron.
type Scheduler struct {
	store         interfaces.BookingStore
	scheduler     *gocron.Scheduler
	sweepInterval time.Duration
	retention     time.Duration
	stopWatchdog  chan struct{}
}

// NewScheduler creates a scheduler with injected dependencies.
func NewScheduler(store interfaces.BookingStore, sweepInterval, retention time.Duration) *Scheduler {
	return &Scheduler{
		store:         store,
		scheduler:     gocron.NewScheduler(time.Local),
		sweepInterval: sweepInterval,
		retention:     retention,
		stopWatchdog:  make(chan struct{}),
	}
}

// Start runs an initial sweep, schedules the recurring one, and starts the
// staleness watchdog.
func (s *Scheduler) Start() error {
	s.sweep()

	_, err := s.scheduler.Every(int(s.sweepInterval.Minutes())).Minutes().Do(s.sweep)
	if err != nil {
		logging.Error("Failed to schedule booking sweep", "error", err)
		return fmt.Errorf("failed to schedule booking sweep: %w", err)
	}

	s.scheduler.StartAsync()
	s.startWatchdog()

	return nil
}

// Stop stops the scheduler and the watchdog.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	close(s.stopWatchdog)
}

// sweep completes past bookings and purges stale cancellations.
func (s *Scheduler) sweep() {
	start := time.Now()
	report := s.store.Sweep(start, s.retention)

	if report.Completed > 0 || report.Purged > 0 {
		logging.Info("Booking sweep finished",
			"completed", report.Completed,
			"purged", report.Purged,
			"duration", time.Since(start).String(),
		)
	} else {
		logging.Debug("Booking sweep finished, nothing to do")
	}
}

// startWatchdog warns when sweeps stop running, which means gocron died or
// the store lock is wedged.
func (s *Scheduler) startWatchdog() {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopWatchdog:
				return
			case <-ticker.C:
				lastSweep := s.store.GetLastSweep()
				if time.Since(lastSweep) > 2*s.sweepInterval {
					logging.Warn("Booking sweep has not run recently",
						"last_sweep", lastSweep.Format(time.RFC3339),
					)
				}
			}
		}
	}()
}
