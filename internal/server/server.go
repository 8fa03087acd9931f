// Package server assembles the HTTP API: it connects the database, the
// identity provider and the event broker, and mounts every route.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tasklane/apiserver/config"
	"github.com/tasklane/apiserver/internal/db"
	"github.com/tasklane/apiserver/internal/handlers"
	"github.com/tasklane/apiserver/internal/identity"
	"github.com/tasklane/apiserver/internal/metrics"
	"github.com/tasklane/apiserver/internal/mq"
	"github.com/tasklane/apiserver/internal/services"
	"github.com/tasklane/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
	logger     *slog.Logger
}

// Deps are the use-cases and infrastructure the router serves.
type Deps struct {
	Users          handlers.UserOperations
	Sessions       handlers.SessionOperations
	Todos          handlers.TodoOperations
	Verifier       handlers.SessionVerifier
	Logger         *slog.Logger
	Registry       *prometheus.Registry
	RequestTimeout time.Duration
}

// New constructs a Server from cfg. Every external connection is opened
// here; a failure closes whatever was already opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	cognito, err := identity.NewClient(ctx, cfg.Cognito)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	verifier, err := identity.NewJWKSVerifier(ctx, cfg.Cognito.Region, cfg.Cognito.UserPoolID, cfg.Cognito.ClientID)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	backend, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	events := mq.New(backend, cfg.MQ.TodoTopic)
	if backend == nil {
		logger.Info("todo events disabled")
	}

	todoRepo := store.NewTodoRepository(dbConn)

	sessionService := services.NewSessionService(cognito, verifier, cfg.Cognito)
	userService := services.NewUserService(cognito, cfg.Cognito)
	todoService := services.NewTodoService(todoRepo, events)

	router := NewRouter(Deps{
		Users:          userService,
		Sessions:       sessionService,
		Todos:          todoService,
		Verifier:       sessionService,
		Logger:         logger,
		Registry:       prometheus.NewRegistry(),
		RequestTimeout: cfg.RequestTimeout,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
		logger:     logger,
	}, nil
}

// NewRouter mounts the API routes on a fresh router.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	collector := metrics.NewCollector(registry)
	authMiddleware := handlers.RequireAuth(deps.Verifier)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(logger),
		collector.Middleware,
		handlers.Recoverer,
		middleware.Timeout(timeout),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, deps.Users)
	})
	router.Route("/sessions", func(r chi.Router) {
		handlers.SessionRouter(r, deps.Sessions, authMiddleware)
	})
	router.Route("/todos", func(r chi.Router) {
		handlers.TodoRouter(r, deps.Todos, authMiddleware)
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and the
// database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		if closeErr := s.events.Close(); closeErr != nil {
			s.logger.Warn("failed to close event broker", slog.Any("error", closeErr))
		}
	}
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			s.logger.Warn("failed to close database", slog.Any("error", closeErr))
		}
	}
	return err
}
