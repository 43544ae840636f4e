package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// hexIDSegment matches a path segment that looks like an object ID
// (24 hex characters). Those are collapsed to a placeholder so the route
// label keeps a bounded cardinality no matter how many resources exist.
var hexIDSegment = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// chiParam rewrites chi route parameters ({id}) to the :id form used in
// the dashboards, so matched and unmatched requests to the same resource
// aggregate under one label value.
var chiParam = regexp.MustCompile(`\{([^}/]+)\}`)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records one duration observation and one counter increment per
// completed response. It is purely observational: it never changes the
// status, headers, or body handed to the client, and the recording itself
// is an in-memory update that cannot fail.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		r.inFlight.Inc()
		defer r.inFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}

		defer func() {
			duration := time.Since(start).Seconds()
			route := normalizeRoute(routeLabel(req))
			status := strconv.Itoa(wrapped.statusCode)

			r.requestsTotal.WithLabelValues(req.Method, route, status).Inc()
			r.requestDuration.WithLabelValues(req.Method, route, status).Observe(duration)
		}()

		next.ServeHTTP(wrapped, req)
	})
}

// routeLabel prefers the pattern chi resolved for the request, falls back
// to the raw path, and finally to "unknown". The chi context is only fully
// populated after routing ran, which is why this is read at completion time.
func routeLabel(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	if req.URL != nil && req.URL.Path != "" {
		return req.URL.Path
	}
	return "unknown"
}

// normalizeRoute collapses object ID segments to :id and rewrites chi
// parameter syntax so the label set stays bounded.
func normalizeRoute(route string) string {
	route = chiParam.ReplaceAllString(route, ":$1")

	if !strings.Contains(route, "/") {
		return route
	}

	segments := strings.Split(route, "/")
	changed := false
	for i, seg := range segments {
		if hexIDSegment.MatchString(seg) {
			segments[i] = ":id"
			changed = true
		}
	}
	if !changed {
		return route
	}
	return strings.Join(segments, "/")
}
