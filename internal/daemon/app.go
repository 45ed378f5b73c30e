// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon owns the runtime lifecycle of the confirmation server.
package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/confirmgate/internal/config"
	"github.com/ManuGH/confirmgate/internal/log"
)

var (
	ErrMissingServer = errors.New("daemon: server is required")
	ErrMissingConfig = errors.New("daemon: config holder is required")
)

// Server is the HTTP server run by the App.
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// App owns the long-lived runtime lifecycle (config watcher, reload wiring, the server).
type App struct {
	logger       zerolog.Logger
	server       Server
	cfgHolder    *config.Holder
	reloadSignal os.Signal

	// watch enables the config file watcher; there is nothing to watch without a file.
	watch bool
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, server Server, cfgHolder *config.Holder, watch bool) (*App, error) {
	if server == nil {
		return nil, ErrMissingServer
	}
	if cfgHolder == nil {
		return nil, ErrMissingConfig
	}
	return &App{
		logger:       logger,
		server:       server,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
		watch:        watch,
	}, nil
}

// Run starts the server and its background subsystems and blocks until ctx is
// cancelled or the server fails. The server is shut down gracefully in both cases.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if a.watch {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.cfgHolder.Stop()
	}

	applyCh := make(chan config.AppConfig, 1)
	a.cfgHolder.RegisterListener(applyCh)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case cfg := <-applyCh:
				applyLogging(cfg)
			}
		}
	})

	if a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.cfgHolder.Reload(ctx); err != nil {
						a.logger.Warn().Err(err).Str(log.FieldEvent, "config.reload_failed").Msg("config reload failed")
					}
				}
			}
		})
	}

	g.Go(func() error {
		return a.server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		timeout := a.cfgHolder.Get().Server.ShutdownTimeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Str(log.FieldEvent, "server.shutdown_failed").Msg("graceful shutdown failed")
			return err
		}
		return nil
	})

	return g.Wait()
}

// applyLogging re-applies the log settings of a reloaded configuration.
func applyLogging(cfg config.AppConfig) {
	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Log.Service,
		Version: cfg.Version,
	})
}
