// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/watcher"
)

// Server is the HTTP server for the Kotae API.
type Server struct {
	engine  *chat.Engine
	manager *indexer.Manager
	store   storage.ChunkStore
	index   IndexInfo
	watch   *watcher.Watcher // optional; nil when corpus watching is disabled
	cfg     *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// IndexInfo exposes the vector index facts the status endpoint reports.
type IndexInfo interface {
	Size() int
	Dimensions() int
}

// NewServer creates a server with the given dependencies. watch may be nil.
func NewServer(
	engine *chat.Engine,
	manager *indexer.Manager,
	store storage.ChunkStore,
	index IndexInfo,
	watch *watcher.Watcher,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:  engine,
		manager: manager,
		store:   store,
		index:   index,
		watch:   watch,
		cfg:     cfg,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/chat", s.handleChat)
	r.Post("/chat/clear", s.handleClear)
	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
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
