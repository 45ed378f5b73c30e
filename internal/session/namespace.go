// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"strings"
	"time"
)

const keySeparator = "/"

type namespaced struct {
	inner  Store
	prefix string
}

// Namespace returns a view of s where every key is prefixed with parts joined by "/".
// Closing the view does not close s.
func Namespace(s Store, parts ...string) Store {
	if len(parts) == 0 {
		return s
	}
	prefix := strings.Join(parts, keySeparator) + keySeparator
	if ns, ok := s.(*namespaced); ok {
		return &namespaced{inner: ns.inner, prefix: ns.prefix + prefix}
	}
	return &namespaced{inner: s, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, value, ttl)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Take(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Take(ctx, n.prefix+key)
}

func (n *namespaced) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	return n.inner.Update(ctx, n.prefix+key, ttl, fn)
}

func (n *namespaced) Close() error { return nil }
