// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigField wraps strict YAML decode failures caused by keys the schema does not know.
var ErrUnknownConfigField = errors.New("unknown config field")

// Environment variable names.
const (
	EnvListen          = "CONFIRMGATE_LISTEN"
	EnvReadTimeout     = "CONFIRMGATE_READ_TIMEOUT"
	EnvWriteTimeout    = "CONFIRMGATE_WRITE_TIMEOUT"
	EnvShutdownTimeout = "CONFIRMGATE_SHUTDOWN_TIMEOUT"
	EnvAllowedOrigins  = "CONFIRMGATE_ALLOWED_ORIGINS"
	EnvRateLimitRPM    = "CONFIRMGATE_RATE_LIMIT_RPM"
	EnvSessionBackend  = "CONFIRMGATE_SESSION_BACKEND"
	EnvSessionTTL      = "CONFIRMGATE_SESSION_TTL"
	EnvSessionCookie   = "CONFIRMGATE_SESSION_COOKIE"
	EnvRedisAddr       = "CONFIRMGATE_REDIS_ADDR"
	EnvRedisPassword   = "CONFIRMGATE_REDIS_PASSWORD"
	EnvRedisDB         = "CONFIRMGATE_REDIS_DB"
	EnvSessionPath     = "CONFIRMGATE_SESSION_PATH"
	EnvSessionCleanup  = "CONFIRMGATE_SESSION_CLEANUP"
	EnvDataDir         = "CONFIRMGATE_DATA"
	EnvDialogYes       = "CONFIRMGATE_DIALOG_YES"
	EnvDialogNo        = "CONFIRMGATE_DIALOG_NO"
	EnvDialogExpired   = "CONFIRMGATE_DIALOG_EXPIRED"
	EnvExpiryNotice    = "CONFIRMGATE_EXPIRY_NOTICE"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogService      = "LOG_SERVICE"
	EnvTracingEnabled  = "CONFIRMGATE_TRACING_ENABLED"
	EnvTracingExporter = "CONFIRMGATE_TRACING_EXPORTER"
	EnvTracingEndpoint = "CONFIRMGATE_TRACING_ENDPOINT"
	EnvTracingSampling = "CONFIRMGATE_TRACING_SAMPLING"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every environment key the last Load looked at.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath loads defaults and
// environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, or "" when none is used.
func (l *Loader) Path() string { return l.configPath }

// Load loads configuration with precedence: ENV > File > Defaults, then validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, cfg *AppConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	str := func(key string, dst *string) {
		l.ConsumedEnvKeys[key] = struct{}{}
		*dst = ParseString(key, *dst)
	}
	integer := func(key string, dst *int) {
		l.ConsumedEnvKeys[key] = struct{}{}
		*dst = ParseInt(key, *dst)
	}
	dur := func(key string, dst *time.Duration) {
		l.ConsumedEnvKeys[key] = struct{}{}
		*dst = ParseDuration(key, *dst)
	}

	str(EnvListen, &cfg.Server.Listen)
	dur(EnvReadTimeout, &cfg.Server.ReadTimeout)
	dur(EnvWriteTimeout, &cfg.Server.WriteTimeout)
	dur(EnvShutdownTimeout, &cfg.Server.ShutdownTimeout)
	l.ConsumedEnvKeys[EnvAllowedOrigins] = struct{}{}
	cfg.Server.AllowedOrigins = ParseList(EnvAllowedOrigins, cfg.Server.AllowedOrigins)
	integer(EnvRateLimitRPM, &cfg.Server.RateLimitRPM)

	str(EnvSessionBackend, &cfg.Session.Backend)
	dur(EnvSessionTTL, &cfg.Session.TTL)
	str(EnvSessionCookie, &cfg.Session.CookieName)
	str(EnvRedisAddr, &cfg.Session.RedisAddr)
	str(EnvRedisPassword, &cfg.Session.RedisPassword)
	integer(EnvRedisDB, &cfg.Session.RedisDB)
	str(EnvSessionPath, &cfg.Session.Path)
	dur(EnvSessionCleanup, &cfg.Session.CleanupInterval)
	str(EnvDataDir, &cfg.DataDir)

	str(EnvDialogYes, &cfg.Dialog.Yes)
	str(EnvDialogNo, &cfg.Dialog.No)
	str(EnvDialogExpired, &cfg.Dialog.Expired)
	str(EnvExpiryNotice, &cfg.Dialog.ExpiryNotice)

	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogService, &cfg.Log.Service)

	l.ConsumedEnvKeys[EnvTracingEnabled] = struct{}{}
	cfg.Telemetry.Enabled = ParseBool(EnvTracingEnabled, cfg.Telemetry.Enabled)
	str(EnvTracingExporter, &cfg.Telemetry.Exporter)
	str(EnvTracingEndpoint, &cfg.Telemetry.Endpoint)
	l.ConsumedEnvKeys[EnvTracingSampling] = struct{}{}
	cfg.Telemetry.SamplingRate = ParseFloat(EnvTracingSampling, cfg.Telemetry.SamplingRate)
}
