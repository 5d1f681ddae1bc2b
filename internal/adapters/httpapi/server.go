// Package httpapi serves phishing predictions over HTTP: an HTML form on /
// and a JSON endpoint on /predict.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/ports"
	"go.uber.org/zap"
)

// Server is the HTTP front end of the detector
type Server struct {
	detector ports.Detector
	logger   *zap.Logger
	cfg      config.ServerConfig
	server   *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates an HTTP server
func NewServer(cfg config.ServerConfig, detector ports.Detector, logger *zap.Logger) *Server {
	s := &Server{
		detector: detector,
		logger:   logger,
		cfg:      cfg,
	}
	s.server = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterHandlers(mux)

	chain := Chain(
		RecoveryMiddleware(s.logger),
		LoggerMiddleware(s.logger),
		SecurityHeadersMiddleware,
		RequestSizeMiddleware(s.cfg.MaxBodyBytes),
	)
	return chain(mux)
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.cfg.ListenAddress)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("HTTP server starting",
		zap.String("address", ln.Addr().String()),
		zap.Bool("ready", s.detector.Ready()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	return nil
}

// Addr returns the bound address once started, else the configured one
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.ListenAddress
}

// ProcessEmail classifies an email through the same path as the endpoints
func (s *Server) ProcessEmail(ctx context.Context, email *core.Email) (*core.Prediction, error) {
	return s.detector.DetectEmail(ctx, email)
}
