// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/confirmgate/internal/config"
	"github.com/ManuGH/confirmgate/internal/daemon"
	xglog "github.com/ManuGH/confirmgate/internal/log"
	"github.com/ManuGH/confirmgate/internal/session"
	"github.com/ManuGH/confirmgate/internal/telemetry"
	"github.com/ManuGH/confirmgate/internal/version"
	"github.com/ManuGH/confirmgate/internal/web"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dialog server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	return cmd
}

// resolveConfigPath returns the explicit path, or ${CONFIRMGATE_DATA}/config.yaml when
// that file exists.
func resolveConfigPath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	dataDir := strings.TrimSpace(os.Getenv(config.EnvDataDir))
	if dataDir == "" {
		return ""
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

func runServe(ctx context.Context, explicitPath string) error {
	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{Level: "info", Service: "confirmgate", Version: version.Version})
	logger := xglog.WithComponent("daemon")

	configPath := resolveConfigPath(explicitPath)
	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", configPath).
			Msg("failed to load configuration")
		return err
	}

	xglog.Configure(xglog.Config{Level: cfg.Log.Level, Service: cfg.Log.Service, Version: cfg.Version})
	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, configPath).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Log.Service,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldEvent, "telemetry.shutdown_failed").Msg("tracer shutdown failed")
		}
	}()

	store, err := session.Open(ctx, session.Options{
		Backend:         cfg.Session.Backend,
		Path:            cfg.SessionPath(),
		CleanupInterval: cfg.Session.CleanupInterval,
		Redis: session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		},
	}, xglog.WithComponent("session"))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldEvent, "session.close_failed").Msg("closing session store failed")
		}
	}()

	holder := config.NewHolder(cfg, loader)
	users := web.DefaultDirectory()
	srv, err := web.New(holder, web.Deps{
		Store:      store,
		Components: web.DemoComponents(users),
		Users:      users,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.Server.Listen).
		Str("session_backend", cfg.Session.Backend).
		Dur("session_ttl", cfg.Session.TTL).
		Bool("tracing", cfg.Telemetry.Enabled).
		Msg("starting confirmgate")

	app, err := daemon.NewApp(logger, srv, holder, configPath != "")
	if err != nil {
		return err
	}
	start := time.Now()
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.failed").Msg("server stopped with error")
		return err
	}
	logger.Info().
		Str(xglog.FieldEvent, "shutdown").
		Dur("uptime", time.Since(start)).
		Msg("server exiting")
	return nil
}
