// SPDX-License-Identifier: MIT

// Package health provides liveness and readiness checks for production deployments.
// It supports Docker HEALTHCHECK and Kubernetes probes with detailed component status.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/confirmgate/internal/log"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Response is the body of both probes.
type Response struct {
	Status    Status                 `json:"status"`
	Ready     *bool                  `json:"ready,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager manages health and readiness checks
type Manager struct {
	version string

	mu       sync.RWMutex
	checkers []Checker
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a health checker to the manager
func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

func (m *Manager) run(ctx context.Context) (Status, map[string]CheckResult) {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	if len(checkers) == 0 {
		return StatusHealthy, nil
	}
	checks := make(map[string]CheckResult, len(checkers))
	status := StatusHealthy
	for _, c := range checkers {
		result := c.Check(ctx)
		checks[c.Name()] = result
		switch {
		case result.Status == StatusUnhealthy:
			status = StatusUnhealthy
		case result.Status == StatusDegraded && status == StatusHealthy:
			status = StatusDegraded
		}
	}
	return status, checks
}

// Health performs a liveness check. Component checks only run when verbose; the
// process is alive regardless of their outcome.
func (m *Manager) Health(ctx context.Context, verbose bool) Response {
	resp := Response{Status: StatusHealthy, Version: m.version, Timestamp: time.Now()}
	if verbose {
		resp.Status, resp.Checks = m.run(ctx)
	}
	return resp
}

// Ready performs a readiness check. Any unhealthy component makes the service unready.
func (m *Manager) Ready(ctx context.Context) Response {
	status, checks := m.run(ctx)
	ready := status != StatusUnhealthy
	return Response{
		Status:    status,
		Ready:     &ready,
		Version:   m.version,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// ServeHealth handles HTTP health check requests
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"
	resp := m.Health(r.Context(), verbose)
	m.write(w, r, "health", http.StatusOK, resp) // Always 200 for liveness
}

// ServeReady handles HTTP readiness check requests
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !*resp.Ready {
		code = http.StatusServiceUnavailable
	}
	m.write(w, r, "readiness", code, resp)
}

func (m *Manager) write(w http.ResponseWriter, r *http.Request, probe string, code int, resp Response) {
	logger := log.WithComponentFromContext(r.Context(), probe)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, probe+".encode_error").Msg("failed to encode probe response")
	}

	logger.Debug().
		Str(log.FieldEvent, probe+".checked").
		Str("status", string(resp.Status)).
		Msg("probe performed")
}
