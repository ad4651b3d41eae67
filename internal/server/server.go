// Package server provides the HTTP API for the assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/assistant"
	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/snapshot"
	"github.com/hyperjump/asistan/internal/storage"
)

// Server is the HTTP server for the assistant API.
type Server struct {
	assistant *assistant.Assistant
	snapshots *snapshot.Holder
	storage   storage.Storage
	config    *config.ServerConfig
	logger    *zap.Logger
	dbPath    string // optional; reported in /health
	server    *http.Server
}

// NewServer creates a server with the given dependencies. dbPath may be empty.
func NewServer(
	asst *assistant.Assistant,
	snapshots *snapshot.Holder,
	storage storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	dbPath string,
) *Server {
	return &Server{
		assistant: asst,
		snapshots: snapshots,
		storage:   storage,
		config:    cfg,
		logger:    logger,
		dbPath:    dbPath,
	}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/classify", s.handleClassify)
		r.Post("/resolve", s.handleResolve)
		r.Post("/detect", s.handleDetect)
		r.Get("/conversations/{id}/messages", s.handleListMessages)
		r.Get("/conversations/{id}/messages/{messageID}/table.xlsx", s.handleMessageTable)
		r.Post("/snapshot/reload", s.handleSnapshotReload)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
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
