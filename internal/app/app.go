// Package app wires configuration into the runtime components shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Cyclone1070/genfab/internal/camera"
	"github.com/Cyclone1070/genfab/internal/config"
	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/executor"
	"github.com/Cyclone1070/genfab/internal/fabrication"
	"github.com/Cyclone1070/genfab/internal/provider/gemini"
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/server"
	"github.com/Cyclone1070/genfab/internal/tool"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
)

// Components holds everything built from one configuration.
type Components struct {
	Device    device.Provider
	Camera    camera.Grabber
	Executor  executor.Runner
	Reasoning models.Provider
	Tools     *tool.Registry
	Slicer    *fabrication.Slicer
	Generator *fabrication.ModelGenerator

	gemini *gemini.GeminiProvider
	logger *slog.Logger
}

// Options overrides pieces of the wiring, mostly for tests.
type Options struct {
	Logger *slog.Logger
	// GeminiClient replaces the SDK client built from the API key.
	GeminiClient gemini.GeminiClient
}

// Build creates the components. Optional capabilities that are not configured
// (camera, reasoning service) are left nil and reported at call time.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Components{logger: logger}

	dev, err := buildDevice(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Device = dev

	runner := executor.New(cfg.Fabrication.MaxOutputBytes, 0)
	c.Executor = runner

	cam, err := camera.New(cfg.Camera.URL, runner, config.Millis(cfg.Camera.TimeoutMs))
	switch {
	case errors.Is(err, camera.ErrCameraNotConfigured):
		logger.Info("camera not configured")
	case err != nil:
		logger.Warn("camera disabled", "error", err)
	default:
		c.Camera = cam
	}

	client := opts.GeminiClient
	if client == nil && cfg.Reasoning.APIKey != "" {
		client, err = gemini.NewRealGeminiClientFromKey(ctx, cfg.Reasoning.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}
	if client != nil {
		c.gemini = gemini.New(client, cfg.Reasoning.Model)
		c.Reasoning = timeoutProvider{Provider: c.gemini, timeout: config.Millis(cfg.Reasoning.TimeoutMs)}
	} else {
		logger.Warn("reasoning service not configured: set GEMINI_API_KEY")
	}

	c.Tools = tool.NewRegistry(analysis.NewDeviceTools(dev)...)

	fabTimeout := config.Millis(cfg.Fabrication.TimeoutMs)
	c.Slicer = fabrication.NewSlicer(cfg.Fabrication.SlicerPath, runner, fabTimeout)
	if c.Reasoning != nil {
		c.Generator = fabrication.NewModelGenerator(c.Reasoning, runner, cfg.Fabrication.OpenSCADPath, cfg.Fabrication.ModelsDir, fabTimeout)
	}

	return c, nil
}

func buildDevice(cfg *config.Config, logger *slog.Logger) (device.Provider, error) {
	if cfg.UseSimulatedDevice() {
		logger.Info("using simulated printer")
		return device.NewSimulated(), nil
	}

	p, err := device.NewPrusaLink(device.PrusaLinkConfig{
		Host:          cfg.Device.Host,
		APIKey:        cfg.Device.APIKey,
		Storage:       cfg.Device.Storage,
		Timeout:       config.Millis(cfg.Device.TimeoutMs),
		RatePerSecond: cfg.Device.RatePerSecond,
		Burst:         cfg.Device.Burst,
	}, device.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create PrusaLink client: %w", err)
	}
	logger.Info("using PrusaLink printer", "host", cfg.Device.Host)
	return p, nil
}

// NewDriver builds an analysis driver from the analysis settings.
func (c *Components) NewDriver(cfg config.AnalysisConfig) *analysis.Driver {
	return analysis.NewDriver(c.Reasoning, c.Tools, analysis.Options{
		MaxTurns:     cfg.MaxTurns,
		DefaultTools: cfg.DefaultTools,
		Logger:       c.logger,
	})
}

// Reload applies settings that can change without a restart.
func (c *Components) Reload(cfg *config.Config) {
	if c.gemini != nil && cfg.Reasoning.Model != "" && cfg.Reasoning.Model != c.gemini.GetModel() {
		c.gemini.SetModel(cfg.Reasoning.Model)
		c.logger.Info("reasoning model changed", "model", cfg.Reasoning.Model)
	}
}

// ServerDeps returns the tool server dependencies, leaving unconfigured ones nil.
func (c *Components) ServerDeps(driver *analysis.Driver) server.Deps {
	deps := server.Deps{
		Device:   c.Device,
		Camera:   c.Camera,
		Analyzer: driver,
		Slicer:   c.Slicer,
	}
	if c.Generator != nil {
		deps.Generator = c.Generator
	}
	return deps
}

// Effort parses the configured default effort.
func Effort(cfg config.AnalysisConfig) models.Effort {
	return models.Effort(strings.ToUpper(cfg.DefaultEffort))
}

// timeoutProvider bounds each reasoning call.
type timeoutProvider struct {
	models.Provider
	timeout time.Duration
}

func (p timeoutProvider) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.Provider.Generate(ctx, req)
}
