// Package entities defines the domain types stored and served by the
// bookings API.
package entities

import "time"

// Booking statuses. A booking moves confirmed -> completed on sweep, or
// confirmed -> cancelled on request. Cancelled bookings are purged after
// the retention window.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking represents a single room reservation. IDs are 24-character hex
// strings, matching the object IDs issued by the legacy system.
type Booking struct {
	ID        string    `json:"id"`
	Guest     string    `json:"guest"`
	Room      string    `json:"room"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
