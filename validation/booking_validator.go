// Package validation provides input validation for the bookings API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roomsteady/bookings-api/data/entities"
	"github.com/roomsteady/bookings-api/interfaces"
)

// Pre-compiled regex patterns, compiled once at package initialization
// and reused for all validations
var (
	// Booking IDs follow the legacy object ID format: 24 hex characters
	idRegex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

	// Guest names: letters (including accented), spaces, hyphens, apostrophes
	guestRegex = regexp.MustCompile(`^[\p{L}\s\-'\.]+$`)

	// Room identifiers: short alphanumeric codes like "101" or "A-12"
	roomRegex = regexp.MustCompile(`^[a-zA-Z0-9\-]{1,16}$`)

	// Dangerous substrings rejected in any free-form input.
	// strings.Contains is faster than regex for plain substrings.
	dangerousPatterns = []string{
		"<script", "javascript:", "onload=", "onerror=",
		"' or ", "\" or ", "union select", "drop table", "--", "/*",
		"../", "..\\", "%2e%2e",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

const (
	maxGuestLen = 120
	maxQueryLen = 80
)

// BookingValidatorImpl implements the interfaces.BookingValidator interface
type BookingValidatorImpl struct{}

// NewBookingValidator creates a new booking validator
func NewBookingValidator() interfaces.BookingValidator {
	return &BookingValidatorImpl{}
}

// ValidateID checks the booking ID format
func (v *BookingValidatorImpl) ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("booking ID is empty")
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("booking ID must be 24 hex characters, got %d characters", len(id))
	}
	return nil
}

// ValidateNewBooking checks a booking payload before it is stored
func (v *BookingValidatorImpl) ValidateNewBooking(b *entities.Booking) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}

	guest := strings.TrimSpace(b.Guest)
	if guest == "" {
		return fmt.Errorf("guest name is required")
	}
	if len(guest) > maxGuestLen {
		return fmt.Errorf("guest name too long: %d characters", len(guest))
	}
	if err := checkDangerous(guest); err != nil {
		return fmt.Errorf("invalid guest name: %w", err)
	}
	if !guestRegex.MatchString(guest) {
		return fmt.Errorf("guest name contains invalid characters")
	}

	if strings.TrimSpace(b.Room) == "" {
		return fmt.Errorf("room is required")
	}
	if !roomRegex.MatchString(b.Room) {
		return fmt.Errorf("invalid room identifier: %s", b.Room)
	}

	if b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return fmt.Errorf("check-in and check-out are required")
	}
	if !b.CheckOut.After(b.CheckIn) {
		return fmt.Errorf("check-out must be after check-in")
	}

	return nil
}

// ValidateGuestQuery checks a guest search term
func (v *BookingValidatorImpl) ValidateGuestQuery(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("search term is empty")
	}
	if len(input) > maxQueryLen {
		return fmt.Errorf("search term too long: %d characters", len(input))
	}
	if err := checkDangerous(input); err != nil {
		return err
	}
	if !guestRegex.MatchString(input) {
		return fmt.Errorf("search term contains invalid characters")
	}
	return nil
}

func checkDangerous(input string) error {
	lowered := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return fmt.Errorf("input contains disallowed sequence")
		}
	}
	return nil
}
