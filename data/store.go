// Package data provides thread-safe storage for bookings. The store is
// in-memory: the API is the system of record only for the lifetime of the
// process, mirroring the scrape-based metrics model where state is
// rebuilt by upstream consumers.
package data

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/roomsteady/bookings-api/data/entities"
	"github.com/roomsteady/bookings-api/interfaces"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Compile-time check to ensure BookingStore implements the interface
var _ interfaces.BookingStore = (*BookingStore)(nil)

var (
	// ErrNotFound is returned when no booking exists for the given ID.
	ErrNotFound = errors.New("booking not found")
	// ErrAlreadyCancelled is returned when cancelling an already cancelled booking.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrDuplicateID is returned when a booking with the same ID already exists.
	ErrDuplicateID = errors.New("booking ID already exists")
)

// BookingStore holds all bookings behind a read-write mutex. Handlers take
// read locks, the scheduler's sweep takes the write lock.
type BookingStore struct {
	mu          sync.RWMutex
	bookings    map[string]entities.Booking
	guestFolded map[string]string // booking ID -> folded guest name for search
	lastChanged time.Time
	lastSweep   time.Time
}

// NewBookingStore creates an empty store.
func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings:    make(map[string]entities.Booking),
		guestFolded: make(map[string]string),
	}
}

// NewID returns a fresh 24-character hex booking ID.
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// time-derived ID rather than crash the request path.
		return fmt.Sprintf("%024x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// foldTransformer strips diacritical marks so "Zoë" matches "zoe".
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldGuestName normalizes a guest name for case and diacritic insensitive
// matching.
func FoldGuestName(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// GetBooking returns the booking for the given ID.
func (s *BookingStore) GetBooking(id string) (entities.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	return b, ok
}

// ListBookings returns all bookings ordered by creation time, newest first.
func (s *BookingStore) ListBookings() []entities.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		result = append(result, b)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// FindByGuest returns bookings whose guest name contains the given term,
// ignoring case and diacritics.
func (s *BookingStore) FindByGuest(name string) []entities.Booking {
	term := FoldGuestName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []entities.Booking
	for id, folded := range s.guestFolded {
		if strings.Contains(folded, term) {
			result = append(result, s.bookings[id])
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Count returns the number of stored bookings.
func (s *BookingStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

// GetLastChanged returns the time of the last write to the store.
func (s *BookingStore) GetLastChanged() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastChanged
}

// GetLastSweep returns the time of the last maintenance sweep.
func (s *BookingStore) GetLastSweep() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSweep
}

// CreateBooking stores a new booking. An empty ID is assigned a fresh one;
// timestamps and status are set by the store.
func (s *BookingStore) CreateBooking(b entities.Booking) (entities.Booking, error) {
	if b.ID == "" {
		b.ID = NewID()
	}

	now := time.Now()
	b.Status = entities.StatusConfirmed
	b.CreatedAt = now
	b.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.ID]; exists {
		return entities.Booking{}, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}

	s.bookings[b.ID] = b
	s.guestFolded[b.ID] = FoldGuestName(b.Guest)
	s.lastChanged = now

	return b, nil
}

// CancelBooking marks a booking cancelled. Completed bookings can still be
// cancelled to correct mistakes; cancelling twice is an error.
func (s *BookingStore) CancelBooking(id string) (entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return entities.Booking{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if b.Status == entities.StatusCancelled {
		return entities.Booking{}, fmt.Errorf("%w: %s", ErrAlreadyCancelled, id)
	}

	now := time.Now()
	b.Status = entities.StatusCancelled
	b.UpdatedAt = now
	s.bookings[id] = b
	s.lastChanged = now

	return b, nil
}

// Sweep marks confirmed bookings past their check-out completed and purges
// cancelled bookings whose last update is older than the retention window.
func (s *BookingStore) Sweep(now time.Time, retention time.Duration) interfaces.SweepReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report interfaces.SweepReport
	cutoff := now.Add(-retention)

	for id, b := range s.bookings {
		switch b.Status {
		case entities.StatusConfirmed:
			if b.CheckOut.Before(now) {
				b.Status = entities.StatusCompleted
				b.UpdatedAt = now
				s.bookings[id] = b
				report.Completed++
			}
		case entities.StatusCancelled:
			if b.UpdatedAt.Before(cutoff) {
				delete(s.bookings, id)
				delete(s.guestFolded, id)
				report.Purged++
			}
		}
	}

	s.lastSweep = now
	if report.Completed > 0 || report.Purged > 0 {
		s.lastChanged = now
	}

	return report
}
