// Package server wires the page lifecycle controller, provider registry,
// and HTTP endpoints into one process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/controller"
	"github.com/pagelingo/pagelingo/internal/home"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/retrier"
	"github.com/pagelingo/pagelingo/internal/server/endpoints"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// Server is the main pagelingo HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	configMgr  *config.Manager
	store      *pages.Store
	sess       *session.Session
	controller *controller.Controller
	homeDir    *home.Dir
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Addr is the listen address (default: :8585)
	Addr string
	// HomeDir is the pagelingo home directory layout
	HomeDir *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.HomeDir == nil {
		return nil, fmt.Errorf("home directory is required")
	}
	if cfg.ConfigManager == nil {
		return nil, fmt.Errorf("config manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = cfg.ConfigManager.Get().Server.Addr
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8585"
	}

	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

	store := pages.NewStore()
	sess := session.New()

	s := &Server{
		registry:  registry,
		configMgr: cfg.ConfigManager,
		store:     store,
		sess:      sess,
		homeDir:   cfg.HomeDir,
		logger:    cfg.Logger,
	}

	s.controller = controller.New(controller.Config{
		Store:  store,
		Images: &diskImages{home: cfg.HomeDir, sess: sess},
		Logger: cfg.Logger,
	})
	s.bindProvider(cfg.ConfigManager.Get())

	// Hot reload: rebuild the registry, then rebind the controller so new
	// keys, models, and pricing take effect without losing page state.
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
		s.bindProvider(c)
		cfg.Logger.Info("provider registry reloaded from config")
	})

	s.services = &svcctx.Services{
		Controller:    s.controller,
		Store:         store,
		Session:       sess,
		Registry:      registry,
		ConfigManager: cfg.ConfigManager,
		Home:          cfg.HomeDir,
		Logger:        cfg.Logger,
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.withServices(mux),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	return s, nil
}

// bindProvider points the controller at the session's provider, falling
// back to the configured default. Missing providers leave the controller
// unbound; translate requests then fail with a clear error.
func (s *Server) bindProvider(cfg *config.Config) {
	name := s.sess.Settings().Provider
	if name == "" {
		name = cfg.Defaults.Provider
	}
	if name == "" {
		return
	}

	client, err := s.registry.Get(name)
	if err != nil {
		s.logger.Warn("default provider unavailable", "provider", name, "error", err)
		return
	}

	policy := retrier.Policy{Logger: s.logger}
	if cfg.Defaults.RetryAttempts > 0 {
		policy.Attempts = uint(cfg.Defaults.RetryAttempts)
	}
	if cfg.Defaults.RetryDelayMS > 0 {
		policy.Delay = time.Duration(cfg.Defaults.RetryDelayMS) * time.Millisecond
	}

	translator, evaluator := controller.NewPipelines(client, cfg.Pricing, policy, s.logger)
	s.controller.SetPipelines(translator, evaluator)
	s.sess.UpdateSettings(session.Settings{Provider: name})
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.homeDir.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown, draining in-flight evaluations.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.controller.WaitForEvaluations()

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Controller returns the page lifecycle controller.
func (s *Server) Controller() *controller.Controller {
	return s.controller
}

// Handler returns the fully wired HTTP handler. Used by tests to exercise
// endpoints without binding a socket.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures a document is loaded.
// Returns 503 Service Unavailable until pages have been ingested or a
// project has been opened.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sess.Document().DocID == "" && s.store.Len() == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"no document loaded"}`))
			return
		}
		next(w, r)
	}
}
