// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend         string
	Path            string // sqlite file or badger directory
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// Open creates a Store based on the backend configuration.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(opts.CleanupInterval), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.Redis, logger)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite session backend requires a path")
		}
		cfg := DefaultSQLiteConfig()
		cfg.CleanupInterval = opts.CleanupInterval
		return NewSQLiteStore(opts.Path, cfg, logger)
	case BackendBadger:
		if opts.Path == "" {
			return nil, fmt.Errorf("badger session backend requires a directory")
		}
		return OpenBadgerStore(opts.Path, opts.CleanupInterval, logger)
	default:
		return nil, fmt.Errorf("unknown session backend: %s (supported: memory, redis, sqlite, badger)", backend)
	}
}
