// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/confirmgate/internal/session"
)

func newTestTokens(t *testing.T, ttl time.Duration) (*TokenStore, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return NewTokenStore(store, ttl), store
}

func TestTokenStore_Uniqueness(t *testing.T) {
	tokens, _ := newTestTokens(t, time.Minute)
	ctx := context.Background()

	const n = 5000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		tok, err := tokens.Issue(ctx, "delete", Params{"id": "42"})
		require.NoError(t, err)
		require.Regexp(t, `^[0-9a-z]+$`, tok)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %q after %d issues", tok, i)
		seen[tok] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestTokenStore_RoundTrip(t *testing.T) {
	tokens, _ := newTestTokens(t, time.Minute)
	ctx := context.Background()

	params := Params{"id": "42", "name": "Ünïcode & <markup>", "empty": "", "num": "007"}
	tok, err := tokens.Issue(ctx, "deleteRecursive", params)
	require.NoError(t, err)

	peeked, ok, err := tokens.Peek(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "deleteRecursive", peeked.Action)

	got, ok, err := tokens.Consume(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tok, got.Token)
	assert.Equal(t, "deleteRecursive", got.Action)
	if diff := cmp.Diff(params, got.Params); diff != "" {
		t.Errorf("params changed across the round trip (-want +got):\n%s", diff)
	}
}

func TestTokenStore_OneShot(t *testing.T) {
	tokens, _ := newTestTokens(t, time.Minute)
	ctx := context.Background()

	tok, err := tokens.Issue(ctx, "enable", nil)
	require.NoError(t, err)

	_, ok, err := tokens.Consume(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = tokens.Consume(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok, "second consume must observe absent")

	_, ok, err = tokens.Peek(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_ExpiryIsBackingTTL(t *testing.T) {
	tokens, _ := newTestTokens(t, 10*time.Millisecond)
	ctx := context.Background()

	tok, err := tokens.Issue(ctx, "delete", Params{"id": "1"})
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	_, ok, err := tokens.Consume(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_MalformedTokens(t *testing.T) {
	tokens, store := newTestTokens(t, time.Minute)
	ctx := context.Background()

	for _, tok := range []string{"", "UPPER", "a/b", "tok en", string(make([]byte, 100))} {
		_, ok, err := tokens.Consume(ctx, tok)
		require.NoError(t, err)
		assert.False(t, ok, "token %q", tok)
	}
	assert.Zero(t, store.Len())
}

func TestTokenStore_CorruptRecordIsAbsent(t *testing.T) {
	tokens, store := newTestTokens(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, tokenKeyPrefix+"abc123", []byte("{not json"), time.Minute))

	_, ok, err := tokens.Consume(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.Len(), "corrupt record is removed by the consume")
}

func TestTokenStore_StoreErrorPropagates(t *testing.T) {
	tokens, store := newTestTokens(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Close())

	_, err := tokens.Issue(ctx, "delete", nil)
	require.ErrorIs(t, err, session.ErrClosed)

	_, _, err = tokens.Consume(ctx, "abc")
	require.ErrorIs(t, err, session.ErrClosed)
}

func TestTokenStore_ConcurrentConsumeSingleWinner(t *testing.T) {
	tokens, _ := newTestTokens(t, time.Minute)
	ctx := context.Background()

	tok, err := tokens.Issue(ctx, "delete", Params{"id": "42"})
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := tokens.Consume(ctx, tok); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestTokenStore_TabsDoNotInterfere(t *testing.T) {
	tokens, _ := newTestTokens(t, time.Minute)
	ctx := context.Background()

	t1, err := tokens.Issue(ctx, "delete", Params{"id": "1"})
	require.NoError(t, err)
	t2, err := tokens.Issue(ctx, "enable", Params{"id": "2"})
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	p2, ok, err := tokens.Consume(ctx, t2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "enable", p2.Action)

	p1, ok, err := tokens.Consume(ctx, t1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", p1.Params.Get("id"))
}
