// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"cmp"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config configures the process-wide logger. Empty fields fall back to the
// LOG_LEVEL, LOG_SERVICE and VERSION environment variables.
type Config struct {
	Level   string
	Output  io.Writer // defaults to os.Stdout
	Service string
	Version string
}

var current atomic.Pointer[zerolog.Logger]

// Configure replaces the base logger and sets the global level. Unparseable levels
// fall back to info. It is safe to call again after a config reload.
func Configure(cfg Config) {
	level, err := zerolog.ParseLevel(cmp.Or(cfg.Level, os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	l := zerolog.New(out).With().
		Timestamp().
		Str("service", cmp.Or(cfg.Service, os.Getenv("LOG_SERVICE"), "confirmgate")).
		Str("version", cmp.Or(cfg.Version, os.Getenv("VERSION"))).
		Logger()
	current.Store(&l)
}

// Base returns the base logger, configuring defaults on first use.
func Base() zerolog.Logger {
	if l := current.Load(); l != nil {
		return *l
	}
	Configure(Config{})
	return *current.Load()
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
