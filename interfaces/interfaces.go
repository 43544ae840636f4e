// Package interfaces defines core abstractions for the bookings API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"time"

	"github.com/roomsteady/bookings-api/data/entities"
)

// SweepReport summarizes a maintenance sweep over the booking store.
type SweepReport struct {
	Completed int // Confirmed bookings past their check-out marked completed
	Purged    int // Cancelled bookings past retention removed
}

// BookingStore defines the contract for booking storage operations.
// All methods are safe for concurrent use by request handlers and the
// background scheduler.
type BookingStore interface {
	// Read operations
	GetBooking(id string) (entities.Booking, bool)
	ListBookings() []entities.Booking
	FindByGuest(name string) []entities.Booking
	Count() int
	GetLastChanged() time.Time
	GetLastSweep() time.Time

	// Write operations
	CreateBooking(b entities.Booking) (entities.Booking, error)
	CancelBooking(id string) (entities.Booking, error)
	Sweep(now time.Time, retention time.Duration) SweepReport
}

// Scheduler defines the contract for background maintenance jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// BookingValidator defines the contract for validating booking input.
type BookingValidator interface {
	// ValidateID checks the booking ID format
	ValidateID(id string) error

	// ValidateNewBooking checks a booking payload before it is stored
	ValidateNewBooking(b *entities.Booking) error

	// ValidateGuestQuery checks a guest search term
	ValidateGuestQuery(input string) error
}
