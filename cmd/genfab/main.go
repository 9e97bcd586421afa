// Command genfab runs the generative manufacturing tool server: printer
// control, camera snapshots, failure analysis and model fabrication over
// JSON-RPC, plus a live status feed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Cyclone1070/genfab/internal/app"
	"github.com/Cyclone1070/genfab/internal/config"
	"github.com/Cyclone1070/genfab/internal/logging"
	"github.com/Cyclone1070/genfab/internal/server"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	loader := config.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	levelVar := logging.Setup(os.Stderr, level)
	logger := slog.Default()

	comps, err := app.Build(ctx, cfg, app.Options{Logger: logger})
	if err != nil {
		return err
	}

	srv := server.New(comps.ServerDeps(comps.NewDriver(cfg.Analysis)), server.Options{
		StatusInterval: config.Millis(cfg.Server.StatusIntervalMs),
		DefaultEffort:  app.Effort(cfg.Analysis),
		Version:        version,
		Logger:         logger,
	})

	go watchConfig(ctx, loader, comps, srv, levelVar, logger)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	return srv.Serve(ctx, addr)
}

// watchConfig applies log level, reasoning model and analysis settings when
// the config file changes. Device, camera and listen address need a restart.
func watchConfig(ctx context.Context, loader *config.Loader, comps *app.Components, srv *server.Server, levelVar *slog.LevelVar, logger *slog.Logger) {
	changes, err := config.Watch(ctx, loader.Path(), 0)
	if err != nil {
		logger.Debug("config hot reload disabled", "path", loader.Path(), "error", err)
		return
	}

	for range changes {
		cfg, err := loader.Load()
		if err != nil {
			logger.Warn("config reload rejected", "error", err)
			continue
		}
		level, err := config.ParseLevel(cfg.Log.Level)
		if err == nil {
			levelVar.Set(level)
		}
		comps.Reload(cfg)
		srv.SetAnalysis(comps.NewDriver(cfg.Analysis), app.Effort(cfg.Analysis))
		logger.Info("config reloaded", "max_turns", cfg.Analysis.MaxTurns, "default_effort", cfg.Analysis.DefaultEffort)
	}
}
