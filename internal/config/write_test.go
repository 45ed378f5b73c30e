// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confirmgate.yaml")
	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# confirmgate configuration"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.Session, cfg.Session)
	assert.Equal(t, want.Dialog, cfg.Dialog)
	assert.Equal(t, want.Server.Listen, cfg.Server.Listen)
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "confirmgate.yaml", "log:\n  level: debug\n")

	err := WriteDefault(path, false)
	require.ErrorIs(t, err, ErrConfigExists)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "log:\n  level: debug\n", string(data))

	require.NoError(t, WriteDefault(path, true))
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "rate_limit_rpm: 600")
}
