// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 600, cfg.Server.RateLimitRPM)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "confirmgate_session", cfg.Session.CookieName)
	assert.Equal(t, "Yes", cfg.Dialog.Yes)
	assert.Equal(t, "No", cfg.Dialog.No)
	assert.Equal(t, "notify", cfg.Dialog.ExpiryNotice)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "v1.2.3", cfg.Version)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  listen: "127.0.0.1:9090"
  allowed_origins: ["https://app.example.com"]
session:
  backend: SQLite
  ttl: 45m
data_dir: `+dir+`
dialog:
  yes: "Ja"
  expiry_notice: silent
log:
  level: DEBUG
`)

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Listen)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "Ja", cfg.Dialog.Yes)
	assert.Equal(t, "No", cfg.Dialog.No, "unset keys keep their default")
	assert.Equal(t, "silent", cfg.Dialog.ExpiryNotice)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "sessions.sqlite"), cfg.SessionPath())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server:\n  listen: \":9090\"\ndialog:\n  no: Nein\n")

	t.Setenv(EnvListen, ":7070")
	t.Setenv(EnvAllowedOrigins, "https://a.example.com, ,https://b.example.com")
	t.Setenv(EnvSessionTTL, "2h")
	t.Setenv(EnvTracingEnabled, "yes")
	t.Setenv(EnvTracingSampling, "0.25")
	t.Setenv(EnvRateLimitRPM, "not-a-number")

	loader := NewLoader(path, "")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Nein", cfg.Dialog.No)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 0.25, cfg.Telemetry.SamplingRate, 1e-9)
	assert.Equal(t, 600, cfg.Server.RateLimitRPM, "invalid env falls back to the file/default value")

	assert.Contains(t, loader.ConsumedEnvKeys, EnvListen)
	assert.Contains(t, loader.ConsumedEnvKeys, EnvTracingSampling)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "session:\n  backend: memory\n  bogus: 1\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoad_RejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json extension", "config.json", "{}"},
		{"multiple documents", "multi.yaml", "log:\n  level: info\n---\nlog:\n  level: debug\n"},
		{"bad duration", "dur.yaml", "session:\n  ttl: forever\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := NewLoader(path, "").Load()
			assert.Error(t, err)
		})
	}

	_, err := NewLoader(filepath.Join(dir, "missing.yaml"), "").Load()
	assert.Error(t, err)
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Listen, cfg.Server.Listen)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad listen", func(c *AppConfig) { c.Server.Listen = "8080" }},
		{"bad backend", func(c *AppConfig) { c.Session.Backend = "mongo" }},
		{"short ttl", func(c *AppConfig) { c.Session.TTL = time.Second }},
		{"bad cookie", func(c *AppConfig) { c.Session.CookieName = "a b" }},
		{"redis without host", func(c *AppConfig) {
			c.Session.Backend = BackendRedis
			c.Session.RedisAddr = ":6379"
		}},
		{"bad expiry notice", func(c *AppConfig) { c.Dialog.ExpiryNotice = "loud" }},
		{"empty yes", func(c *AppConfig) { c.Dialog.Yes = " " }},
		{"bad log level", func(c *AppConfig) { c.Log.Level = "verbose" }},
		{"bad origin", func(c *AppConfig) { c.Server.AllowedOrigins = []string{"example.com"} }},
		{"negative rate", func(c *AppConfig) { c.Server.RateLimitRPM = -1 }},
		{"bad exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}},
		{"bad sampling", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}},
	}

	require.NoError(t, Validate(Default()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestSessionPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	assert.Empty(t, cfg.SessionPath())

	cfg.Session.Backend = BackendBadger
	assert.Equal(t, "/data/badger", cfg.SessionPath())

	cfg.Session.Path = "/custom"
	assert.Equal(t, "/custom", cfg.SessionPath())
}
