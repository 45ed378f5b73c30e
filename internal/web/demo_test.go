// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory(t *testing.T) {
	dir := NewDirectory("Alice", "Bob")

	users := dir.List()
	require.Len(t, users, 2)
	assert.Equal(t, User{ID: 1, Name: "Alice", Enabled: true}, users[0])
	assert.Equal(t, 2, users[1].ID)

	enabled, ok := dir.Toggle(2)
	assert.True(t, ok)
	assert.False(t, enabled)
	u, _ := dir.Get(2)
	assert.False(t, u.Enabled)

	_, ok = dir.Toggle(9)
	assert.False(t, ok)

	assert.True(t, dir.Delete(1))
	assert.False(t, dir.Delete(1))
	_, ok = dir.Get(1)
	assert.False(t, ok)
	assert.Len(t, dir.List(), 1)
}

func TestDirectory_ConcurrentToggle(t *testing.T) {
	dir := NewDirectory("Alice")
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir.Toggle(1)
		}()
	}
	wg.Wait()
	u, _ := dir.Get(1)
	assert.True(t, u.Enabled, "an even number of toggles restores the flag")
}

func TestDemoComponents(t *testing.T) {
	comps := DemoComponents(DefaultDirectory())
	require.Len(t, comps, 2)
	assert.Equal(t, ComponentAjax, comps[0].Options.Name)
	assert.Equal(t, ComponentNonAjax, comps[1].Options.Name)
	for _, c := range comps {
		assert.Equal(t, []string{"delete", "deleteRecursive", "enable", "infinite"}, c.Registry.Names())
	}
}
