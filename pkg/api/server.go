package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/r3d91ll/relaxplot/pkg/config"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	router     *Router
	hub        *Hub
	config     config.ServerConfig
	logger     *slog.Logger

	// mu protects server state
	mu       sync.RWMutex
	running  bool
	listener net.Listener
}

// Options configures NewServer.
type Options struct {
	// Config supplies the server section and the export defaults.
	// Nil means config.Default().
	Config *config.Config

	// ConfigPath is the file served and updated by /api/config.
	ConfigPath string

	Logger *slog.Logger
}

// NewServer creates a server with every API route registered.
func NewServer(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	sc := cfg.Server
	def := config.Default().Server
	if sc.Host == "" {
		sc.Host = def.Host
	}
	if sc.ReadTimeout == 0 {
		sc.ReadTimeout = def.ReadTimeout
	}
	if sc.WriteTimeout == 0 {
		sc.WriteTimeout = def.WriteTimeout
	}
	if sc.IdleTimeout == 0 {
		sc.IdleTimeout = def.IdleTimeout
	}

	s := &Server{
		router: NewRouter(),
		hub:    NewHub(logger),
		config: sc,
		logger: logger,
	}

	s.router.GET("/api/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"clients": s.hub.ClientCount(),
		})
	})
	NewBackendsHandler(cfg.Templates.Path).RegisterRoutes(s.router)
	NewExportHandler(cfg, NewHubEventBroadcaster(s.hub), logger).RegisterRoutes(s.router)
	NewConfigHandler(opts.ConfigPath).RegisterRoutes(s.router)
	NewWebSocketHandler(s.hub, makeOriginChecker(sc.CORSOrigins)).RegisterRoutes(s.router)
	return s
}

// Address returns the configured address in host:port format.
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// ListenAddr returns the bound address while running, which differs from
// Address when the port is 0.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Router returns the underlying router for registering handlers.
func (s *Server) Router() *Router {
	return s.router
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router wrapped in the configured middleware.
func (s *Server) Handler() http.Handler {
	middlewares := []Middleware{RecoveryMiddleware(s.logger), RequestIDMiddleware}
	if s.config.EnableLogging {
		middlewares = append(middlewares, LoggingMiddleware(s.logger))
	}
	if len(s.config.CORSOrigins) > 0 {
		middlewares = append(middlewares, CORSMiddleware(s.config.CORSOrigins))
	}
	middlewares = append(middlewares, ContentTypeMiddleware)
	return Chain(s.router, middlewares...)
}

// Start binds the listener and serves in the background. Binding errors
// such as a port in use are returned directly.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return werrors.New(werrors.ErrNetworkListenFailed, werrors.CategoryNetwork,
			"server is already running")
	}

	ln, err := net.Listen("tcp", s.Address())
	if err != nil {
		return werrors.AttachSuggestions(werrors.WrapNetwork(err, werrors.ErrNetworkListenFailed,
			"server failed to start").
			WithContext("address", s.Address()))
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout.Std(),
		WriteTimeout: s.config.WriteTimeout.Std(),
		IdleTimeout:  s.config.IdleTimeout.Std(),
	}
	s.listener = ln
	s.running = true

	go s.hub.Run()
	go func(srv *http.Server) {
		s.logger.Info("server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}(s.httpServer)
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("shutting down server")
	s.running = false
	s.listener = nil
	s.hub.Stop()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ListenAndServe starts the server and blocks until ctx is cancelled, then
// shuts down within timeout.
func (s *Server) ListenAndServe(ctx context.Context, timeout time.Duration) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// makeOriginChecker creates a function that validates WebSocket origins
// against the configured CORS origins list.
func makeOriginChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool)
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// No origin header (same-origin request) - allow
			return true
		}
		return allowed[origin]
	}
}
