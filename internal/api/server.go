// Package api exposes screening runs over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taxoscreen/app"
	"taxoscreen/internal"
	"taxoscreen/internal/config"
	"taxoscreen/ports"
)

// Server is the HTTP application
type Server struct {
	router   *chi.Mux
	logger   *internal.Logger
	service  *app.ScreenService
	screens  ports.ScreenRepository
	reader   ports.MatrixReader
	defaults config.ScreenConfig
}

// NewServer creates a new API server
func NewServer(service *app.ScreenService, screens ports.ScreenRepository, reader ports.MatrixReader, defaults config.ScreenConfig) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   internal.DefaultLogger,
		service:  service,
		screens:  screens,
		reader:   reader,
		defaults: defaults,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/screens", func(r chi.Router) {
			r.Get("/", s.handleListScreens)
			r.Post("/", s.handleCreateScreen)
			r.Post("/demo", s.handleDemoScreen)
			r.Get("/{id}", s.handleGetScreen)
			r.Get("/{id}/report", s.handleScreenReport)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server on the given port
func (s *Server) ListenAndServe(port string) error {
	s.logger.Info("API server listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}
