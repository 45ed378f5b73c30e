// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"path/filepath"
	"time"
)

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	DataDir   string          `yaml:"data_dir"`
	Dialog    DialogConfig    `yaml:"dialog"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Version is the binary version; it is never read from the file.
	Version string `yaml:"-"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins may post forms in addition to the server's own origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RateLimitRPM limits dialog requests per client IP and minute; 0 disables it.
	RateLimitRPM int `yaml:"rate_limit_rpm"`
}

// SessionConfig selects and tunes the session store.
type SessionConfig struct {
	Backend         string        `yaml:"backend"`
	TTL             time.Duration `yaml:"ttl"`
	CookieName      string        `yaml:"cookie_name"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password"`
	RedisDB         int           `yaml:"redis_db"`
	Path            string        `yaml:"path"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DialogConfig holds the user facing dialog texts.
type DialogConfig struct {
	Yes     string `yaml:"yes"`
	No      string `yaml:"no"`
	Expired string `yaml:"expired"`
	// ExpiryNotice is "notify" or "silent".
	ExpiryNotice string `yaml:"expiry_notice"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

const defaultExpiredText = "Confirmation token expired. Please try the action again."

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Listen:          ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RateLimitRPM:    600,
		},
		Session: SessionConfig{
			Backend:         BackendMemory,
			TTL:             30 * time.Minute,
			CookieName:      "confirmgate_session",
			RedisAddr:       "localhost:6379",
			CleanupInterval: time.Minute,
		},
		DataDir: "/tmp/confirmgate",
		Dialog: DialogConfig{
			Yes:          "Yes",
			No:           "No",
			Expired:      defaultExpiredText,
			ExpiryNotice: "notify",
		},
		Log: LogConfig{
			Level:   "info",
			Service: "confirmgate",
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// SessionPath returns the configured store path or the backend's default below DataDir.
func (c AppConfig) SessionPath() string {
	if c.Session.Path != "" {
		return c.Session.Path
	}
	switch c.Session.Backend {
	case BackendSQLite:
		return filepath.Join(c.DataDir, "sessions.sqlite")
	case BackendBadger:
		return filepath.Join(c.DataDir, "badger")
	default:
		return ""
	}
}
