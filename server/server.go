// Package server provides HTTP server management and lifecycle handling
// for the bookings API: router setup, middleware ordering, and graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/roomsteady/bookings-api/config"
	"github.com/roomsteady/bookings-api/handlers"
	"github.com/roomsteady/bookings-api/logging"
	"github.com/roomsteady/bookings-api/metrics"

	_ "net/http/pprof"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   chi.Router
	config   *config.Config
	handler  *handlers.BookingHandler
	recorder *metrics.Recorder
	limiter  *RateLimiter
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler *handlers.BookingHandler, recorder *metrics.Recorder) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:   router,
		config:   cfg,
		handler:  handler,
		recorder: recorder,
		limiter:  NewRateLimiter(recorder.RateLimiterBuckets.Set),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware. The metrics recorder sits
// outside Recoverer so panics are still counted as 500 responses.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.RequestLogger(logging.Default()))
	s.router.Use(s.recorder.Middleware)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/bookings", s.handler.ListBookings)
	s.router.Post("/bookings", s.handler.CreateBooking)
	s.router.Get("/bookings/{id}", s.handler.GetBooking)
	s.router.Delete("/bookings/{id}", s.handler.CancelBooking)
	s.router.Get("/bookings/guest/{name}", s.handler.FindByGuest)
	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Get("/metrics", s.recorder.Handler().ServeHTTP)
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	s.limiter.StartCleanup(30 * time.Minute)

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.limiter.StopCleanup()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Error("Profiling server failed", "error", err)
		}
	}()
}
