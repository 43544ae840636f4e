package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		name     string
		route    string
		expected string
	}{
		{"Object ID segment", "/bookings/507f1f77bcf86cd799439011", "/bookings/:id"},
		{"Uppercase hex segment", "/bookings/507F1F77BCF86CD799439011", "/bookings/:id"},
		{"Trailing slash after ID", "/bookings/507f1f77bcf86cd799439011/", "/bookings/:id/"},
		{"ID in the middle", "/bookings/507f1f77bcf86cd799439011/notes", "/bookings/:id/notes"},
		{"Two IDs", "/rooms/aaaaaaaaaaaaaaaaaaaaaaaa/bookings/bbbbbbbbbbbbbbbbbbbbbbbb", "/rooms/:id/bookings/:id"},
		{"Too short for an ID", "/bookings/507f1f77bcf86cd79943901", "/bookings/507f1f77bcf86cd79943901"},
		{"Too long for an ID", "/bookings/507f1f77bcf86cd7994390111", "/bookings/507f1f77bcf86cd7994390111"},
		{"Non-hex characters", "/bookings/507f1f77bcf86cd79943901z", "/bookings/507f1f77bcf86cd79943901z"},
		{"Chi parameter syntax", "/bookings/{id}", "/bookings/:id"},
		{"Chi parameter named", "/bookings/guest/{name}", "/bookings/guest/:name"},
		{"Plain path untouched", "/health", "/health"},
		{"Root path", "/", "/"},
		{"Unknown label untouched", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRoute(tt.route)
			if got != tt.expected {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.route, got, tt.expected)
			}
		})
	}
}

func TestMiddlewareRecordsPerStatus(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	router := chi.NewRouter()
	router.Use(rec.Middleware)
	router.Get("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "507f1f77bcf86cd799439011" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"507f1f77bcf86cd799439011", "ffffffffffffffffffffffff"} {
		req := httptest.NewRequest("GET", "/bookings/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	ok := testutil.ToFloat64(rec.requestsTotal.WithLabelValues("GET", "/bookings/:id", "200"))
	if ok != 1 {
		t.Errorf("Expected one 200 for /bookings/:id, got %v", ok)
	}

	notFound := testutil.ToFloat64(rec.requestsTotal.WithLabelValues("GET", "/bookings/:id", "404"))
	if notFound != 1 {
		t.Errorf("Expected one 404 for /bookings/:id, got %v", notFound)
	}

	// One histogram series per label combination seen so far.
	if n := testutil.CollectAndCount(rec.requestDuration); n != 2 {
		t.Errorf("Expected 2 duration series, got %d", n)
	}
}

func TestMiddlewareDefaultsToStatus200(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Write without an explicit WriteHeader call.
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(rec.requestsTotal.WithLabelValues("GET", "/health", "200"))
	if got != 1 {
		t.Errorf("Expected one 200 for /health, got %v", got)
	}
}

func TestMiddlewareFallsBackToRawPath(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	// No chi router in the chain, so there is no matched route pattern.
	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/things/507f1f77bcf86cd799439011", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(rec.requestsTotal.WithLabelValues("GET", "/things/:id", "404"))
	if got != 1 {
		t.Errorf("Expected raw path fallback with ID collapsed, got %v", got)
	}
}

func TestMiddlewareDoesNotAlterResponse(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "value")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/teapot", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status 418 to pass through, got %d", w.Code)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Expected custom header to pass through")
	}
	if w.Body.String() != "short and stout" {
		t.Errorf("Expected body to pass through, got %q", w.Body.String())
	}
}

func TestMiddlewareConcurrentRequests(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	router := chi.NewRouter()
	router.Use(rec.Middleware)
	router.Get("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("GET", "/bookings/507f1f77bcf86cd799439011", nil)
			router.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	got := testutil.ToFloat64(rec.requestsTotal.WithLabelValues("GET", "/bookings/:id", "200"))
	if got != n {
		t.Errorf("Expected %d requests counted, got %v (lost updates)", n, got)
	}

	if inFlight := testutil.ToFloat64(rec.inFlight); inFlight != 0 {
		t.Errorf("Expected in-flight gauge back at 0, got %v", inFlight)
	}
}

func TestMiddlewareCounterMonotonic(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last float64
	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

		current := testutil.ToFloat64(rec.requestsTotal.WithLabelValues("GET", "/health", "200"))
		if current < last {
			t.Fatalf("Counter decreased from %v to %v", last, current)
		}
		if current != float64(i+1) {
			t.Fatalf("Expected count %d, got %v", i+1, current)
		}
		last = current
	}
}
