package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/roomsteady/bookings-api/config"
	"github.com/roomsteady/bookings-api/data"
	"github.com/roomsteady/bookings-api/data/entities"
	"github.com/roomsteady/bookings-api/handlers"
	"github.com/roomsteady/bookings-api/health"
	"github.com/roomsteady/bookings-api/metrics"
	"github.com/roomsteady/bookings-api/server"
	"github.com/roomsteady/bookings-api/validation"
)

// newTestServer wires the full stack the way main does, minus the
// scheduler and the listening socket.
func newTestServer(t *testing.T) (*server.Server, *data.BookingStore) {
	t.Helper()

	cfg := &config.Config{
		Port:           "8000",
		Address:        "127.0.0.1",
		Env:            "test",
		MaxRequestBody: 1048576,
		MaxHeaderSize:  1048576,
		ServiceName:    "bookings-api",
	}

	store := data.NewBookingStore()
	store.Sweep(time.Now(), time.Hour)

	recorder := metrics.NewRecorder(cfg.ServiceName, cfg.MetricsBuckets)
	checker := health.NewHealthChecker(store, time.Hour)
	handler := handlers.NewBookingHandler(store, validation.NewBookingValidator(), checker)

	return server.NewServer(cfg, handler, recorder), store
}

func TestBookingLifecycleEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	// Create
	payload, _ := json.Marshal(map[string]any{
		"guest":     "Alice Martin",
		"room":      "205",
		"check_in":  time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"check_out": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/bookings", bytes.NewReader(payload)))
	if w.Code != http.StatusCreated {
		t.Fatalf("Create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created entities.Booking
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	// Fetch
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/bookings/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Get: expected 200, got %d", w.Code)
	}

	// Cancel
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/bookings/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Cancel: expected 200, got %d", w.Code)
	}

	// Miss
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/bookings/ffffffffffffffffffffffff", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Miss: expected 404, got %d", w.Code)
	}

	// The scrape output aggregates request IDs under one route label with
	// separate status series.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Scrape: expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	checks := []string{
		`http_requests_total{method="GET",route="/bookings/:id",service="bookings-api",status="200"} 1`,
		`http_requests_total{method="GET",route="/bookings/:id",service="bookings-api",status="404"} 1`,
		`http_requests_total{method="DELETE",route="/bookings/:id",service="bookings-api",status="200"} 1`,
		`http_requests_total{method="POST",route="/bookings",service="bookings-api",status="201"} 1`,
	}
	for _, c := range checks {
		if !strings.Contains(body, c) {
			t.Errorf("Scrape output missing %q", c)
		}
	}
	if strings.Contains(body, created.ID) {
		t.Errorf("Scrape output leaked a raw booking ID, route labels are unbounded")
	}
}

func TestMetricsEndpointContentType(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("Expected text exposition content type, got %q", w.Header().Get("Content-Type"))
	}
}

func TestUnmatchedRouteCountedWithPathFallback(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/nothing/507f1f77bcf86cd799439011/here", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown route, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), `route="/nothing/:id/here"`) {
		t.Errorf("Expected unmatched route recorded with ID collapsed")
	}
}

func TestHealthEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp["status"])
	}
}
