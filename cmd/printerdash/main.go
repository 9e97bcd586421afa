// Command printerdash is a terminal dashboard for the printer: live status,
// pause/resume/stop and on-demand failure analysis of the camera frame.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cyclone1070/genfab/internal/app"
	"github.com/Cyclone1070/genfab/internal/config"
	"github.com/Cyclone1070/genfab/internal/logging"
	"github.com/Cyclone1070/genfab/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	// The alternate screen owns stdout; logs go to a file when requested.
	logOut := io.Discard
	if path := os.Getenv("GENFAB_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Setup(logOut, level)

	comps, err := app.Build(ctx, cfg, app.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}

	analyzer := &app.FrameAnalyzer{
		Camera: comps.Camera,
		Driver: comps.NewDriver(cfg.Analysis),
		Effort: app.Effort(cfg.Analysis),
	}

	dash := ui.New(ctx, comps.Device, analyzer, ui.Options{
		PollInterval: config.Millis(cfg.Server.StatusIntervalMs),
	})
	return dash.Start()
}
