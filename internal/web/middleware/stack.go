// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package middleware provides the HTTP middleware of the confirmgate web server.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	xglog "github.com/ManuGH/confirmgate/internal/log"
)

// StackConfig configures the ingress middleware stack.
type StackConfig struct {
	// AllowedOrigins may send state-changing requests besides the server's own origin.
	AllowedOrigins []string
	// CSP overrides DefaultCSP.
	CSP string
	// Tracer enables server spans; nil disables tracing.
	Tracer trace.Tracer
	// AccessLog enables one log line per request.
	AccessLog bool
}

// Stack returns the middleware in application order, outermost first. Rate limiting is
// not part of it; the server applies it to the dialog routes only.
func Stack(cfg StackConfig) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		Recoverer,
		RequestID,
		CSRFProtection(cfg.AllowedOrigins),
		SecurityHeaders(cfg.CSP),
		Observe(cfg.Tracer),
	}
	if cfg.AccessLog {
		stack = append(stack, xglog.Middleware())
	}
	return stack
}

// NewRouter returns a chi router with Stack(cfg) installed.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Stack(cfg)...)
	return r
}
