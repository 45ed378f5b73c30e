// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/confirmgate/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package.
// It creates DataDir when it does not exist yet.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("server.listen", cfg.Server.Listen)
	v.Duration("server.read_timeout", cfg.Server.ReadTimeout, time.Second, 10*time.Minute)
	v.Duration("server.write_timeout", cfg.Server.WriteTimeout, time.Second, 10*time.Minute)
	v.Duration("server.shutdown_timeout", cfg.Server.ShutdownTimeout, 0, 5*time.Minute)
	for _, origin := range cfg.Server.AllowedOrigins {
		v.Origin("server.allowed_origins", origin)
	}
	v.NonNegative("server.rate_limit_rpm", cfg.Server.RateLimitRPM)

	v.OneOf("session.backend", cfg.Session.Backend,
		[]string{BackendMemory, BackendRedis, BackendSQLite, BackendBadger})
	v.Duration("session.ttl", cfg.Session.TTL, time.Minute, 30*24*time.Hour)
	v.Token("session.cookie_name", cfg.Session.CookieName)
	v.Duration("session.cleanup_interval", cfg.Session.CleanupInterval, 0, 24*time.Hour)
	if cfg.Session.Backend == BackendRedis {
		v.HostPort("session.redis_addr", cfg.Session.RedisAddr)
		v.Range("session.redis_db", cfg.Session.RedisDB, 0, 15)
	}
	if cfg.Session.Backend == BackendSQLite || cfg.Session.Backend == BackendBadger {
		v.Directory("data_dir", cfg.DataDir, false)
	}

	v.NotEmpty("dialog.yes", cfg.Dialog.Yes)
	v.NotEmpty("dialog.no", cfg.Dialog.No)
	v.OneOf("dialog.expiry_notice", cfg.Dialog.ExpiryNotice, []string{"notify", "silent"})

	v.LogLevel("log.level", cfg.Log.Level)
	v.NotEmpty("log.service", cfg.Log.Service)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.Fraction("telemetry.sampling_rate", cfg.Telemetry.SamplingRate)
	}

	return v.Err()
}
