package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.StatusIntervalMs < 100 {
		errs = append(errs, "server.status_interval_ms must be >= 100")
	}

	// Device
	if c.Device.TimeoutMs < 1 {
		errs = append(errs, "device.timeout_ms must be >= 1")
	}
	if c.Device.RatePerSecond <= 0 {
		errs = append(errs, "device.rate_per_second must be > 0")
	}
	if c.Device.Burst < 1 {
		errs = append(errs, "device.burst must be >= 1")
	}
	if !c.UseSimulatedDevice() && c.Device.Storage == "" {
		errs = append(errs, "device.storage must not be empty")
	}

	// Camera
	if c.Camera.TimeoutMs < 1 {
		errs = append(errs, "camera.timeout_ms must be >= 1")
	}

	// Reasoning
	if c.Reasoning.Model == "" {
		errs = append(errs, "reasoning.model must not be empty")
	}
	if c.Reasoning.TimeoutMs < 1 {
		errs = append(errs, "reasoning.timeout_ms must be >= 1")
	}

	// Analysis
	if c.Analysis.MaxTurns < 1 {
		errs = append(errs, "analysis.max_turns must be >= 1")
	}
	if e := strings.ToUpper(c.Analysis.DefaultEffort); e != "LOW" && e != "HIGH" {
		errs = append(errs, "analysis.default_effort must be LOW or HIGH")
	}

	// Fabrication
	if c.Fabrication.TimeoutMs < 1 {
		errs = append(errs, "fabrication.timeout_ms must be >= 1")
	}
	if c.Fabrication.MaxOutputBytes < 1 {
		errs = append(errs, "fabrication.max_output_bytes must be >= 1")
	}

	// Log
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level must be one of debug, info, warn, error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}
