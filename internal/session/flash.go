// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/confirmgate/internal/log"
)

const flashKey = "flash"

// Flash is a one-time message shown to the user on the next rendered page.
type Flash struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Flashes is the per-session flash message queue.
type Flashes struct {
	store Store
	ttl   time.Duration
}

// NewFlashes creates a queue on a session scoped store.
func NewFlashes(store Store, ttl time.Duration) *Flashes {
	return &Flashes{store: store, ttl: ttl}
}

// Push appends a message to the queue. The append is a single atomic store update, so
// notices pushed from concurrent requests of one session are all kept.
func (f *Flashes) Push(ctx context.Context, msg Flash) error {
	err := f.store.Update(ctx, flashKey, f.ttl, func(current []byte, found bool) ([]byte, error) {
		var queue []Flash
		if found {
			if err := json.Unmarshal(current, &queue); err != nil {
				logger := log.WithComponentFromContext(ctx, "session")
				logger.Warn().
					Err(err).
					Str(log.FieldEvent, "session.flash_corrupt").
					Int("bytes", len(current)).
					Msg("discarding undecodable flash queue")
				queue = nil
			}
		}
		return json.Marshal(append(queue, msg))
	})
	if err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

// Pop removes and returns all queued messages in insertion order.
func (f *Flashes) Pop(ctx context.Context) ([]Flash, error) {
	raw, ok, err := f.store.Take(ctx, flashKey)
	if err != nil {
		return nil, fmt.Errorf("take flashes: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var queue []Flash
	if err := json.Unmarshal(raw, &queue); err != nil {
		return nil, fmt.Errorf("decode flashes: %w", err)
	}
	return queue, nil
}
