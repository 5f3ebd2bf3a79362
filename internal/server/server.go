// Package server provides the HTTP server and routing for the dashboard API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/database"
	"github.com/SeanFuture9999/stock-game1/internal/events"
	alerthandlers "github.com/SeanFuture9999/stock-game1/internal/modules/alerts/handlers"
	diaryhandlers "github.com/SeanFuture9999/stock-game1/internal/modules/diary/handlers"
	chiphandlers "github.com/SeanFuture9999/stock-game1/internal/modules/institutional/handlers"
	ledgerhandlers "github.com/SeanFuture9999/stock-game1/internal/modules/ledger/handlers"
	performancehandlers "github.com/SeanFuture9999/stock-game1/internal/modules/performance/handlers"
	portfoliohandlers "github.com/SeanFuture9999/stock-game1/internal/modules/portfolio/handlers"
	quotehandlers "github.com/SeanFuture9999/stock-game1/internal/modules/quotes/handlers"
	settingshandlers "github.com/SeanFuture9999/stock-game1/internal/modules/settings/handlers"
	watchlisthandlers "github.com/SeanFuture9999/stock-game1/internal/modules/watchlist/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/scheduler"
)

// Handlers collects the per-module HTTP handlers the server mounts
type Handlers struct {
	Ledger      *ledgerhandlers.Handler
	Portfolio   *portfoliohandlers.Handler
	Performance *performancehandlers.Handler
	Quotes      *quotehandlers.Handler
	Watchlist   *watchlisthandlers.Handler
	Diary       *diaryhandlers.Handler
	Alerts      *alerthandlers.Handler
	Chips       *chiphandlers.Handler
	Settings    *settingshandlers.Handler
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Handlers  Handlers
	Databases []*database.DB
	Scheduler *scheduler.Scheduler
	Events    *events.Manager
}

// Server is the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config

	system *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		system: NewSystemHandlers(cfg.Log, cfg.Databases, cfg.Scheduler, cfg.Events),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.system.HandleHealth)

	h := s.cfg.Handlers
	s.router.Route("/api", func(r chi.Router) {
		h.Ledger.RegisterRoutes(r)
		h.Portfolio.RegisterRoutes(r)
		h.Performance.RegisterRoutes(r)
		h.Quotes.RegisterRoutes(r)
		h.Watchlist.RegisterRoutes(r)
		h.Diary.RegisterRoutes(r)
		h.Alerts.RegisterRoutes(r)
		h.Chips.RegisterRoutes(r)
		h.Settings.RegisterRoutes(r)

		r.Get("/system/stats", s.system.HandleSystemStats)
		r.Get("/system/jobs", s.system.HandleJobStatus)
		r.Post("/system/jobs/{name}/run", s.system.HandleRunJob)
		r.Get("/system/events", s.system.HandleRecentEvents)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
