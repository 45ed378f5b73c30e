// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/confirmgate/internal/session"
)

const storeCheckTimeout = 2 * time.Second

type pinger interface {
	HealthCheck(ctx context.Context) error
}

// StoreChecker checks the session store. Stores with a native health check are pinged;
// others get a write-then-take round trip of a short-lived probe record.
type StoreChecker struct {
	name  string
	store session.Store
}

// NewStoreChecker creates a checker for store reported under name.
func NewStoreChecker(name string, store session.Store) *StoreChecker {
	return &StoreChecker{name: name, store: store}
}

func (c *StoreChecker) Name() string {
	return c.name
}

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()

	if err := c.probe(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "session store unavailable",
			Error:   err.Error(),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "session store reachable"}
}

func (c *StoreChecker) probe(ctx context.Context) error {
	if p, ok := c.store.(pinger); ok {
		return p.HealthCheck(ctx)
	}

	key := "health:" + uuid.NewString()
	if err := c.store.Set(ctx, key, []byte("ok"), 10*time.Second); err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	value, ok, err := c.store.Take(ctx, key)
	if err != nil {
		return fmt.Errorf("take probe: %w", err)
	}
	if !ok || string(value) != "ok" {
		return fmt.Errorf("probe record lost")
	}
	return nil
}
