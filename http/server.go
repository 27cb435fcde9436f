// Package http serves the risk form, its JSON API and the live session socket.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"heartrisk/ml"
	"heartrisk/monitoring"
	"heartrisk/session"
)

// Server serves the form, the JSON API and the live session socket.
type Server struct {
	server   *http.Server
	config   ServerConfig
	sessions *SessionHub
	logger   *zap.Logger
}

// ServerConfig holds the listener and request limits.
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxRequestSize int64
}

// DefaultServerConfig returns the settings used when config.yaml sets none.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8501,
		Timeout:        30 * time.Second,
		MaxRequestSize: 64 << 10,
	}
}

// Dependencies are the process-wide handles injected into every handler.
// HaltErr non-nil means no model is loaded and only the halt page is served.
type Dependencies struct {
	Predictor session.Predictor
	ModelPath string
	Warnings  []ml.LoadWarning
	HaltErr   error
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
}

// NewServer builds the server and its routes.
func NewServer(config ServerConfig, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetrics()
	}
	if config.MaxRequestSize <= 0 {
		config.MaxRequestSize = DefaultServerConfig().MaxRequestSize
	}

	mux := http.NewServeMux()
	var sessions *SessionHub
	if deps.HaltErr != nil {
		RegisterHaltHandlers(mux, deps)
	} else {
		sessions = NewSessionHub(deps.Predictor, deps.Logger)
		RegisterHandlers(mux, deps)
		mux.HandleFunc("GET /ws/session", sessions.HandleWebSocket)
	}

	chain := Chain(
		RecoveryMiddleware(deps.Logger),
		LoggerMiddleware(deps.Logger, deps.Metrics),
		SecurityHeadersMiddleware,
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxRequestSize),
	)

	return &Server{
		server: &http.Server{
			Addr:        fmt.Sprintf(":%d", config.Port),
			Handler:     chain(mux),
			ReadTimeout: config.Timeout,
			IdleTimeout: 120 * time.Second,
		},
		config:   config,
		sessions: sessions,
		logger:   deps.Logger,
	}
}

// Handler returns the routed, wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop closes live sessions and drains in-flight requests.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if s.sessions != nil {
		s.sessions.Close()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
