package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestScrapeEndpoint(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	// Record one request so the counter family has a series to export.
	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from scrape endpoint, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/plain") {
		t.Errorf("Expected text exposition content type, got %q", contentType)
	}

	body := w.Body.String()

	if !strings.Contains(body, "http_requests_total{") {
		t.Errorf("Expected http_requests_total series in scrape output")
	}
	if !strings.Contains(body, "http_request_duration_seconds_bucket{") {
		t.Errorf("Expected duration histogram buckets in scrape output")
	}

	// Every exported request series carries the service label.
	for _, line := range strings.Split(body, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "http_") && !strings.HasPrefix(line, "rate_limiter_") {
			continue
		}
		if !strings.Contains(line, `service="bookings-api"`) {
			t.Errorf("Series missing service label: %s", line)
		}
	}
}

func TestScrapeEndpointConcurrentWithRequests(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))
		}
	}()

	// Scrape while the writer goroutine is running. Each scrape must return
	// a consistent snapshot without corrupting the live counters.
	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Scrape %d failed with status %d", i, w.Code)
		}
	}
	<-done
}

func TestDuplicateRegistrationFails(t *testing.T) {
	rec := NewRecorder("bookings-api", nil)

	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": "bookings-api"}, rec.Registry())
	err := reg.Register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current in-flight requests",
	}))
	if err == nil {
		t.Fatal("Expected duplicate registration to fail")
	}
}

func TestNewRecorderUsesConfiguredBuckets(t *testing.T) {
	rec := NewRecorder("bookings-api", []float64{0.5, 1, 2})

	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	if !strings.Contains(body, `le="0.5"`) || !strings.Contains(body, `le="2"`) {
		t.Errorf("Expected configured bucket boundaries in scrape output")
	}
	if strings.Contains(body, `le="0.001"`) {
		t.Errorf("Default boundaries leaked into configured histogram")
	}
}
