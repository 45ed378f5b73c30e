// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := newRedisStoreWithClient(client, "", zerolog.Nop())
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore_TTL(t *testing.T) {
	mr, s := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ttl-key", []byte("ttl-value"), 100*time.Millisecond))

	v, ok, err := s.Get(ctx, "ttl-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ttl-value", string(v))

	// Fast-forward time in miniredis
	mr.FastForward(200 * time.Millisecond)

	_, ok, err = s.Take(ctx, "ttl-key")
	require.NoError(t, err)
	assert.False(t, ok, "expected value to be expired")
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	mr, s := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "abc", []byte("1"), time.Minute))
	assert.True(t, mr.Exists("confirmgate:abc"), "keys must be stored under the default prefix")
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, s := setupMiniRedis(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.HealthCheck(context.Background()))
}

func TestNewRedisStore_ConnectionFailure(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection failed")
}
