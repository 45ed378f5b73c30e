// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName is the cookie carrying the session identifier.
const DefaultCookieName = "confirmgate_session"

// ManagerConfig configures session identity.
type ManagerConfig struct {
	CookieName string
	TTL        time.Duration
}

// Manager binds HTTP requests to a session identifier and scopes the shared Store per
// session.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
}

// NewManager creates a Manager over store.
func NewManager(store Store, cfg ManagerConfig) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Manager{
		store:      store,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
	}
}

// TTL is the lifetime applied to records written on behalf of a session.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// ID returns the session identifier carried by r, if it is well formed.
func (m *Manager) ID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Ensure returns the session identifier of r, issuing a new session cookie when the
// request does not carry a valid one. The cookie is refreshed on every call so the
// browser-side lifetime tracks the store TTL.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) string {
	id, ok := m.ID(r)
	if !ok {
		id = uuid.NewString()
	}

	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if m.ttl > 0 {
		cookie.MaxAge = int(m.ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return id
}

// Scope returns the Store view for one session, further namespaced by parts.
func (m *Manager) Scope(sessionID string, parts ...string) Store {
	return Namespace(m.store, append([]string{"sess", sessionID}, parts...)...)
}
