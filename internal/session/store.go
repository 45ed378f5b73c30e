// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session provides the per-user key/value storage that pending confirmations
// and flash messages live in, together with cookie based session identity.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClosed is returned by stores after Close.
	ErrClosed = errors.New("session store closed")
	// ErrContention is returned by Update when concurrent writers kept invalidating it.
	ErrContention = errors.New("session store: update contention")
)

// maxUpdateAttempts bounds the retries of optimistic backends.
const maxUpdateAttempts = 64

// UpdateFunc computes the new value of a key from its current one. found is false when
// the key is absent or expired. It may run more than once and must not have side effects
// beyond its result.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Store is a durable key/value store with per-key expiry.
//
// Implementations must make Take and Update atomic per key: when several callers Take the
// same key concurrently exactly one of them observes the value, and concurrent Updates of a
// key behave as if run one after another.
type Store interface {
	// Get returns the value stored under key. Expired keys are reported as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, overwriting any previous value. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Take atomically reads and removes key.
	Take(ctx context.Context, key string) ([]byte, bool, error)
	// Update atomically replaces the value under key with fn's result and sets its ttl.
	// No write to key by another caller can land between the read and the write.
	// An error from fn aborts the update and is returned wrapped.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error
	// Close releases resources held by the store.
	Close() error
}

func expiryFor(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
