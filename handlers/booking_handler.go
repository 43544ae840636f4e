// Package handlers provides HTTP request handlers for the bookings API
// endpoints, with dependencies injected through the interfaces package.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/roomsteady/bookings-api/data"
	"github.com/roomsteady/bookings-api/data/entities"
	"github.com/roomsteady/bookings-api/interfaces"
	"github.com/roomsteady/bookings-api/logging"
)

const defaultPageSize = 20

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	store     interfaces.BookingStore
	validator interfaces.BookingValidator
	health    interfaces.HealthChecker
}

// NewBookingHandler creates a handler with injected dependencies.
func NewBookingHandler(store interfaces.BookingStore, validator interfaces.BookingValidator, health interfaces.HealthChecker) *BookingHandler {
	return &BookingHandler{
		store:     store,
		validator: validator,
		health:    health,
	}
}

// RespondWithJSON writes a JSON response
func (h *BookingHandler) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// RespondWithError writes a JSON error response
func (h *BookingHandler) RespondWithError(w http.ResponseWriter, code int, message string) {
	h.RespondWithJSON(w, code, map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// createBookingRequest is the accepted POST payload.
type createBookingRequest struct {
	Guest    string    `json:"guest"`
	Room     string    `json:"room"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	booking := entities.Booking{
		Guest:    req.Guest,
		Room:     req.Room,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	}

	if err := h.validator.ValidateNewBooking(&booking); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.CreateBooking(booking)
	if err != nil {
		logging.Error("Failed to create booking", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, created)
}

// GetBooking handles GET /bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateID(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, ok := h.store.GetBooking(id)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, booking)
}

// CancelBooking handles DELETE /bookings/{id}
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateID(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	cancelled, err := h.store.CancelBooking(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNotFound):
			h.RespondWithError(w, http.StatusNotFound, "Booking not found")
		case errors.Is(err, data.ErrAlreadyCancelled):
			h.RespondWithError(w, http.StatusConflict, "Booking already cancelled")
		default:
			logging.Error("Failed to cancel booking", "error", err, "id", id)
			h.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel booking")
		}
		return
	}

	h.RespondWithJSON(w, http.StatusOK, cancelled)
}

// ListBookings handles GET /bookings with optional ?page= pagination
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		parsed, err := strconv.Atoi(pageParam)
		if err != nil || parsed < 1 {
			logging.Warn("Unusual user input", "page", pageParam)
			h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = parsed
	}

	bookings := h.store.ListBookings()

	start := (page - 1) * defaultPageSize
	end := start + defaultPageSize

	if start > 0 && start >= len(bookings) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}
	if start > len(bookings) {
		start = len(bookings)
	}
	if end > len(bookings) {
		end = len(bookings)
	}

	totalItems := len(bookings)
	maxPage := (totalItems + defaultPageSize - 1) / defaultPageSize
	if maxPage == 0 {
		maxPage = 1
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":       bookings[start:end],
		"page":       page,
		"pageSize":   defaultPageSize,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	})
}

// FindByGuest handles GET /bookings/guest/{name}
func (h *BookingHandler) FindByGuest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.validator.ValidateGuestQuery(name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := h.store.FindByGuest(name)
	if results == nil {
		results = []entities.Booking{}
	}

	// Always 200 with a results array, empty if nothing matched
	h.RespondWithJSON(w, http.StatusOK, results)
}

// HealthCheck handles GET /health
func (h *BookingHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.HealthCheck()

	response := map[string]interface{}{"status": status}
	for k, v := range details {
		response[k] = v
	}

	h.RespondWithJSON(w, httpStatus, response)
}
