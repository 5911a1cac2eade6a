// Package server provides the HTTP API for Miru.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/chat"
	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/ingest"
	"github.com/hyperjump/miru/internal/keyword"
	"github.com/hyperjump/miru/internal/search"
	"github.com/hyperjump/miru/internal/storage"
	"github.com/hyperjump/miru/internal/watcher"
)

// Server is the HTTP server for the Miru API.
type Server struct {
	engine   *search.Engine
	ingester *ingest.Ingester
	chat     *chat.Service
	storage  storage.Storage
	keywords keyword.Index     // optional
	watch    *watcher.Watcher  // optional
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. keywords and watch
// may be nil.
func NewServer(
	engine *search.Engine,
	ingester *ingest.Ingester,
	chatSvc *chat.Service,
	store storage.Storage,
	keywords keyword.Index,
	watch *watcher.Watcher,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		ingester: ingester,
		chat:     chatSvc,
		storage:  store,
		keywords: keywords,
		watch:    watch,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/search/keyword", s.handleKeywordSearch)
	r.Post("/api/v1/images", s.handleUploadImage)
	r.Get("/api/v1/images", s.handleListImages)
	r.Get("/api/v1/images/{id}", s.handleGetImage)
	r.Delete("/api/v1/images/{id}", s.handleDeleteImage)
	r.Delete("/api/v1/images", s.handleClearImages)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/messages", s.handleListMessages)
	r.Delete("/api/v1/messages", s.handleClearMessages)
	r.Get("/api/v1/status", s.handleStatus)
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
