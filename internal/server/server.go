// Package server assembles the chi router, middleware chain and route table.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/config"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/observability"
	"github.com/fieldworks/woms/internal/ratelimit"
	"github.com/fieldworks/woms/internal/realtime"
	"github.com/fieldworks/woms/internal/server/handlers"
	servermw "github.com/fieldworks/woms/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
}

// Options carries the wired dependencies the route table needs.
type Options struct {
	Config  config.Config
	API     *handlers.API
	Health  *handlers.HealthManager
	Limiter *ratelimit.Limiter
	Hub     *realtime.Hub
}

// New creates a new HTTP server instance
func New(opts Options) *Server {
	r := chi.NewRouter()

	// Standard chi middleware
	r.Use(chimw.RealIP)

	// Custom middleware in order: RequestID → Identity → AccessLog → Recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.Identity)
	r.Use(servermw.AccessLog)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		cfg:    opts.Config.Server,
	}

	s.registerRoutes(opts)

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 120 * time.Second
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.cfg.Port
}
