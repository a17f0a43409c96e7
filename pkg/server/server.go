package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/proxy/handlers"
	"mercator-hq/interviewer/pkg/proxy/middleware"
	"mercator-hq/interviewer/pkg/telemetry"
	"mercator-hq/interviewer/pkg/telemetry/health"
	"mercator-hq/interviewer/pkg/telemetry/tracing"
)

// ChatPath is the relay endpoint.
const ChatPath = "/chat"

// BuildInfo is reported by the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the relay HTTP server.
type Server struct {
	config    config.ServerConfig
	relay     config.RelayConfig
	telemetry config.TelemetryConfig
	streamer  handlers.Streamer
	tel       *telemetry.Telemetry
	build     BuildInfo

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// NewServer creates a server for cfg. streamer serves /chat and tel provides
// metrics, tracing and health checks.
func NewServer(cfg *config.Config, streamer handlers.Streamer, tel *telemetry.Telemetry, build BuildInfo) *Server {
	return &Server{
		config:    cfg.Server,
		relay:     cfg.Relay,
		telemetry: cfg.Telemetry,
		streamer:  streamer,
		tel:       tel,
		build:     build,
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", ln.Addr().String(),
			"static_dir", s.config.StaticDir,
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.markStopped()
		return err
	}
}

// Shutdown gracefully shuts down the server. Open event streams are given
// shutdown_timeout to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running, srv := s.isRunning, s.httpServer
		s.mu.RUnlock()
		if !running || srv == nil {
			return
		}

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			_ = srv.Close()
		}
		s.markStopped()
		slog.Info("relay server stopped")
	})

	return shutdownErr
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	h := s.telemetry.Health

	mux.Handle(ChatPath, handlers.NewChatHandler(s.streamer, s.relay.MaxTurns))
	mux.Handle(h.LivenessPath, s.tel.Health.LivenessHandler())
	mux.Handle(h.ReadinessPath, s.tel.Health.ReadinessHandler())
	mux.Handle(h.VersionPath, health.VersionHandler(s.build.Version, s.build.Commit, s.build.BuildTime))
	if s.tel.Metrics.Enabled() {
		mux.Handle(s.telemetry.Metrics.Path, s.tel.Metrics.Handler())
	}
	if s.config.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}

	routes := []string{ChatPath, h.LivenessPath, h.ReadinessPath, h.VersionPath, s.telemetry.Metrics.Path}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.config.CORS)(handler)
	handler = middleware.MetricsMiddleware(s.tel.Metrics, routes...)(handler)
	handler = middleware.LoggingMiddleware(h.LivenessPath, h.ReadinessPath, s.telemetry.Metrics.Path)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = tracing.HTTPMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}
