// Package health provides health checking functionality for the bookings API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/roomsteady/bookings-api/interfaces"
)

// Compile-time check to ensure HealthCheckerImpl implements the interface
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl reports service health based on store state and the
// background sweep cadence.
type HealthCheckerImpl struct {
	store         interfaces.BookingStore
	sweepInterval time.Duration
	startTime     time.Time
}

// NewHealthChecker creates a health checker with injected dependencies.
func NewHealthChecker(store interfaces.BookingStore, sweepInterval time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:         store,
		sweepInterval: sweepInterval,
		startTime:     time.Now(),
	}
}

// HealthCheck returns the service status, a detail map for the /health
// response body, and the HTTP status to serve it with. The service degrades
// when the maintenance sweep falls behind and goes unhealthy when it looks
// stuck entirely.
func (h *HealthCheckerImpl) HealthCheck() (status string, details map[string]any, httpStatus int) {
	lastSweep := h.store.GetLastSweep()
	uptime := time.Since(h.startTime)

	// Before the first sweep runs, judge staleness by uptime instead.
	sweepAge := time.Since(lastSweep)
	if lastSweep.IsZero() {
		sweepAge = uptime
	}

	switch {
	case sweepAge > 4*h.sweepInterval:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case sweepAge > 2*h.sweepInterval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	details = map[string]any{
		"uptime_seconds":  math.Round(uptime.Seconds()*10) / 10,
		"booking_count":   h.store.Count(),
		"last_changed":    formatTime(h.store.GetLastChanged()),
		"last_sweep":      formatTime(lastSweep),
		"sweep_age_hours": math.Round(sweepAge.Hours()*10) / 10,
	}

	return status, details, httpStatus
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
