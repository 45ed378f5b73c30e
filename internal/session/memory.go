// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// entry represents a stored value with expiration time.
type entry struct {
	value      []byte
	expiration time.Time // zero means no expiry
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// MemoryStore is an in-process Store. It is the default backend and the one tests use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
	now     func() time.Time
	janitor *janitor
}

// NewMemoryStore creates a memory store. A positive cleanupInterval starts a background
// goroutine removing expired entries; it stops on Close.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	s.janitor = startJanitor(cleanupInterval, func() { s.deleteExpired() })
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	e, found := s.entries[key]
	if !found {
		return nil, false, nil
	}
	if e.isExpired(s.now()) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return cloneBytes(e.value), true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.entries[key] = &entry{
		value:      cloneBytes(value),
		expiration: expiryFor(s.now(), ttl),
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.entries, key)
	return nil
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	e, found := s.entries[key]
	if !found {
		return nil, false, nil
	}
	delete(s.entries, key)
	if e.isExpired(s.now()) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var current []byte
	e, found := s.entries[key]
	if found && e.isExpired(s.now()) {
		found = false
	}
	if found {
		current = cloneBytes(e.value)
	}
	next, err := fn(current, found)
	if err != nil {
		return fmt.Errorf("memory update: %w", err)
	}
	s.entries[key] = &entry{value: cloneBytes(next), expiration: expiryFor(s.now(), ttl)}
	return nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// deleteExpired removes all expired entries and returns how many were removed.
func (s *MemoryStore) deleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for key, e := range s.entries {
		if e.isExpired(now) {
			delete(s.entries, key)
			count++
		}
	}
	return count
}

// Close stops the janitor and drops all entries.
func (s *MemoryStore) Close() error {
	s.janitor.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make(map[string]*entry)
	return nil
}
