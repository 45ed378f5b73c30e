// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.sqlite")
	cfg := DefaultSQLiteConfig()
	cfg.CleanupInterval = 0
	s, err := NewSQLiteStore(path, cfg, zerolog.Nop())
	require.NoError(t, err)
	return s, path
}

func TestSQLiteStore_ExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSQLite(t)
	defer s.Close()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, s.Set(ctx, "long", []byte("b"), time.Hour))
	require.NoError(t, s.Set(ctx, "forever", []byte("c"), 0))

	now = now.Add(time.Minute)

	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ = s.Get(ctx, "long")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newTestSQLite(t)
	require.NoError(t, s.Set(ctx, "k", []byte("durable"), time.Hour))
	require.NoError(t, s.Close())

	cfg := DefaultSQLiteConfig()
	cfg.CleanupInterval = 0
	reopened, err := NewSQLiteStore(path, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Take(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "durable", string(v))
}

func TestSQLiteStore_SchemaVersion(t *testing.T) {
	s, _ := newTestSQLite(t)
	defer s.Close()

	var v int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&v))
	assert.Equal(t, sqliteSchemaVersion, v)
}
