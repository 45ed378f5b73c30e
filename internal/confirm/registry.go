// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"context"
	"regexp"
	"sort"
	"sync"
)

var actionNamePattern = regexp.MustCompile(`^[A-Za-z_]+$`)

// Handler runs a confirmed action with the parameters captured when the confirmation was
// requested. It may call d.RequestConfirmation to chain into a further question.
type Handler func(ctx context.Context, d *Dialog, params Params) error

// Action is a registered confirmable action.
type Action struct {
	Name     string
	Handler  Handler
	Question Question
}

// Registry maps action names to actions for one dialog component.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action. It fails with a *ConfigurationError when the name is empty,
// contains anything but ASCII letters and underscores, is already taken, or when handler
// or question is missing. A failed call leaves the registry unchanged.
func (r *Registry) Register(name string, handler Handler, question Question) error {
	switch {
	case name == "":
		return &ConfigurationError{Reason: "name is empty"}
	case !actionNamePattern.MatchString(name):
		return &ConfigurationError{Action: name, Reason: "name must consist of letters and underscores"}
	case handler == nil:
		return &ConfigurationError{Action: name, Reason: "handler must not be nil"}
	case question == nil || !question.valid():
		return &ConfigurationError{Action: name, Reason: "question must be non-empty text, markup or a function"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[name]; exists {
		return &ConfigurationError{Action: name, Reason: "already registered"}
	}
	r.actions[name] = Action{Name: name, Handler: handler, Question: question}
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(name string, handler Handler, question Question) *Registry {
	if err := r.Register(name, handler, question); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	if !ok {
		return Action{}, &UnknownActionError{Action: name}
	}
	return a, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
