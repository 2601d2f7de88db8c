// Package server exposes the classification pipeline over HTTP and
// WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/idscan/internal/config"
	"github.com/MeKo-Tech/idscan/internal/pipeline"
)

// classifier is the slice of the pipeline the server needs; tests
// substitute a stub.
type classifier interface {
	ClassifyBytes(ctx context.Context, data []byte, name string) (*pipeline.FileResult, error)
	Close() error
}

// Server serves classification requests.
type Server struct {
	pipeline classifier
	cfg      config.ServerConfig
	types    []string
	sides    []string
	logger   *slog.Logger
}

// Config holds server settings.
type Config struct {
	App       *config.Config
	SpeedTier string
	Logger    *slog.Logger
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ClassesResponse lists the configured document classes.
type ClassesResponse struct {
	DocumentTypes []string `json:"document_types"`
	DocumentSides []string `json:"document_sides"`
}

// ClassifyResponse wraps a file analysis.
type ClassifyResponse struct {
	Success bool                 `json:"success"`
	Result  *pipeline.FileResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// NewServer builds the pipeline and the server around it.
func NewServer(cfg Config) (*Server, error) {
	app := cfg.App
	if app == nil {
		defaults := config.DefaultConfig()
		app = &defaults
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p, err := pipeline.NewBuilder().
		WithConfig(app).
		WithSpeedTier(cfg.SpeedTier).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	return &Server{
		pipeline: p,
		cfg:      app.Server,
		types:    app.EnabledDocumentTypes(),
		sides:    app.EnabledDocumentSides(),
		logger:   logger,
	}, nil
}

// Close releases the pipeline.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/classes", s.corsMiddleware(s.classesHandler))
	mux.HandleFunc("/classify", s.corsMiddleware(s.classifyHandler))
	mux.HandleFunc("/ws", s.classifyWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Start runs the HTTP server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.TimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.TimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
