// Package server provides the HTTP API for the company matching service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/ingest"
	"github.com/predictiff/companymatch/internal/matcher"
	"github.com/predictiff/companymatch/internal/storage"
	"github.com/predictiff/companymatch/internal/watcher"
)

// Server is the HTTP server for the matching API.
type Server struct {
	engine  *matcher.Engine
	loader  *ingest.Loader
	storage storage.Storage
	writer  backend.Writer
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server

	// watch is optional; dataset endpoints degrade gracefully without it.
	watch      *watcher.Watcher
	configPath string
	configMu   sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWatcher attaches the dataset directory watcher so its roots can be
// managed over the API. configPath, when non-empty, is where directory changes
// are persisted.
func WithWatcher(w *watcher.Watcher, configPath string) ServerOption {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *matcher.Engine,
	loader *ingest.Loader,
	store storage.Storage,
	writer backend.Writer,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...ServerOption,
) *Server {
	s := &Server{
		engine:  engine,
		loader:  loader,
		storage: store,
		writer:  writer,
		config:  cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/match", s.handleMatch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/companies/{domain}", s.handleGetCompanies)
	r.Post("/api/v1/datasets", s.handleLoadDataset)
	r.Get("/api/v1/datasets/directories", s.handleDatasetDirectoriesList)
	r.Post("/api/v1/datasets/directories", s.handleDatasetDirectoriesAdd)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
