// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package web serves the confirmation dialogs over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/confirmgate/internal/config"
	"github.com/ManuGH/confirmgate/internal/confirm"
	"github.com/ManuGH/confirmgate/internal/health"
	"github.com/ManuGH/confirmgate/internal/log"
	"github.com/ManuGH/confirmgate/internal/session"
	"github.com/ManuGH/confirmgate/internal/telemetry"
	"github.com/ManuGH/confirmgate/internal/web/middleware"
)

// Component is a dialog mounted under /c/{name}. Its registry is shared by all requests.
type Component struct {
	Options  confirm.Options
	Registry *confirm.Registry
}

// Deps are the collaborators of a Server.
type Deps struct {
	Store      session.Store
	Components []Component
	Users      *Directory
}

// Server is the HTTP front end.
type Server struct {
	holder     *config.Holder
	sessions   *session.Manager
	health     *health.Manager
	users      *Directory
	components map[string]Component
	order      []string
	logger     zerolog.Logger

	handlerOnce sync.Once
	handler     http.Handler

	mu   sync.Mutex
	http *http.Server
}

// New creates a server. Listener, session and middleware settings are taken from the
// holder's configuration at construction; dialog texts are re-read on every request.
func New(holder *config.Holder, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("web: session store is required")
	}
	if len(deps.Components) == 0 {
		return nil, errors.New("web: at least one dialog component is required")
	}
	if deps.Users == nil {
		deps.Users = NewDirectory()
	}

	cfg := holder.Get()
	s := &Server{
		holder: holder,
		sessions: session.NewManager(deps.Store, session.ManagerConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
		}),
		health:     health.NewManager(cfg.Version),
		users:      deps.Users,
		components: make(map[string]Component, len(deps.Components)),
		logger:     log.WithComponent("web"),
	}
	for _, c := range deps.Components {
		name := c.Options.Name
		if name == "" || c.Registry == nil {
			return nil, fmt.Errorf("web: component %q needs a name and a registry", name)
		}
		if _, dup := s.components[name]; dup {
			return nil, fmt.Errorf("web: duplicate component %q", name)
		}
		s.components[name] = c
		s.order = append(s.order, name)
	}
	s.health.RegisterChecker(health.NewStoreChecker("session_store", deps.Store))
	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() { s.handler = s.routes() })
	return s.handler
}

func (s *Server) routes() http.Handler {
	cfg := s.holder.Get()
	stack := middleware.StackConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AccessLog:      true,
	}
	if cfg.Telemetry.Enabled {
		stack.Tracer = telemetry.Tracer("confirmgate/http")
	}
	r := middleware.NewRouter(stack)

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles()))))

	r.Route("/c/{component}", func(r chi.Router) {
		r.Use(middleware.DialogRateLimit(cfg.Server.RateLimitRPM))
		r.Get("/signal/{signal}", s.handleSignal)
		r.Post("/form", s.handleForm)
	})
	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.holder.Get().Server.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	cfg := s.holder.Get().Server
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	s.mu.Lock()
	if s.http != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("web: server already started")
	}
	s.http = srv
	s.mu.Unlock()

	s.logger.Info().
		Str(log.FieldEvent, "server.listening").
		Str("addr", ln.Addr().String()).
		Msg("serving confirmation dialogs")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info().Str(log.FieldEvent, "server.shutdown").Msg("shutting down server")
	return srv.Shutdown(ctx)
}
