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

	appconfig "github.com/quantalab/qbenchd/internal/config"
	"github.com/quantalab/qbenchd/internal/database"
	"github.com/quantalab/qbenchd/internal/di"
	maxcuthandlers "github.com/quantalab/qbenchd/internal/modules/maxcut/handlers"
	runshandlers "github.com/quantalab/qbenchd/internal/modules/runs/handlers"
	volumehandlers "github.com/quantalab/qbenchd/internal/modules/volume/handlers"
	vqehandlers "github.com/quantalab/qbenchd/internal/modules/vqe/handlers"
	"github.com/quantalab/qbenchd/internal/work"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *appconfig.Config
	Port      int
	DevMode   bool
	Container *di.Container
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *appconfig.Config
	container      *di.Container
	fanout         *EventFanout
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
	}

	s.fanout = NewEventFanout(cfg.Container.Bus, cfg.Log)
	s.systemHandlers = NewSystemHandlers(
		cfg.Log,
		cfg.Config.DataDir,
		[]*database.DB{cfg.Container.ResultsDB, cfg.Container.CacheDB},
		cfg.Container.History,
		cfg.Container.Processor,
	)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own deadlines
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Event streaming: SSE and WebSocket over the same fanout
		eventsStream := NewEventsStreamHandler(s.fanout, s.log)
		r.Get("/events/stream", eventsStream.ServeHTTP)

		wsHandler := NewWSHandler(s.fanout, s.log)
		r.Get("/events/ws", wsHandler.ServeHTTP)

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)
		})

		trigger := s.container.Processor.Trigger

		// Run records (shared across experiment kinds)
		runsHandler := runshandlers.NewHandler(s.container.RunsRepo, s.log)
		runsHandler.RegisterRoutes(r)

		// Quantum-volume benchmarking
		volumeHandler := volumehandlers.NewHandler(s.container.RunsRepo, s.container.VolumeRepo, trigger, s.log)
		volumeHandler.RegisterRoutes(r)

		// VQE ground-state runs
		vqeHandler := vqehandlers.NewHandler(s.container.RunsRepo, trigger, s.log)
		vqeHandler.RegisterRoutes(r)

		// QAOA MaxCut runs
		maxcutHandler := maxcuthandlers.NewHandler(s.container.RunsRepo, trigger, s.log)
		maxcutHandler.RegisterRoutes(r)
	})

	// Work processor management
	workHandlers := work.NewHandlers(s.container.Processor, s.container.Registry, s.container.History)
	workHandlers.RegisterRoutes(s.router)
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
