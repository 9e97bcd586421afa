// Package fabrication turns descriptions into printable files: OpenSCAD
// generation and compilation, and PrusaSlicer G-code export.
package fabrication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cyclone1070/genfab/internal/executor"
)

// DefaultSlicerBinary is used when no slicer path is configured.
const DefaultSlicerBinary = "prusa-slicer"

// SliceResult describes a finished slice.
type SliceResult struct {
	OutputPath string   `json:"output_path"`
	Preset     string   `json:"preset"`
	Args       []string `json:"args"`
	Stdout     string   `json:"stdout,omitempty"`
}

// Slicer drives the PrusaSlicer CLI.
type Slicer struct {
	binary  string
	runner  executor.Runner
	timeout time.Duration
}

// NewSlicer creates a Slicer. An empty binary selects DefaultSlicerBinary.
func NewSlicer(binary string, runner executor.Runner, timeout time.Duration) *Slicer {
	if binary == "" {
		binary = DefaultSlicerBinary
	}
	return &Slicer{binary: binary, runner: runner, timeout: timeout}
}

type preset struct {
	name     string
	keywords []string
	args     []string
}

// Checked in order; the first preset with a matching keyword wins.
var presets = []preset{
	{
		name:     "draft",
		keywords: []string{"draft", "fast"},
		args:     []string{"--layer-height", "0.25", "--fill-density", "10%", "--fill-pattern", "grid"},
	},
	{
		name:     "strong",
		keywords: []string{"strong", "strength", "heavy"},
		args:     []string{"--layer-height", "0.2", "--fill-density", "40%", "--perimeters", "4", "--fill-pattern", "gyroid"},
	},
	{
		name:     "detail",
		keywords: []string{"detail", "quality", "pretty"},
		args:     []string{"--layer-height", "0.10", "--fill-density", "15%"},
	},
}

var defaultPreset = preset{
	name: "default",
	args: []string{"--layer-height", "0.2", "--fill-density", "15%"},
}

// PresetFor maps a free-form intent ("fast draft", "strong bracket") to CLI overrides.
func PresetFor(intent string) (string, []string) {
	intent = strings.ToLower(intent)
	for _, p := range presets {
		for _, kw := range p.keywords {
			if strings.Contains(intent, kw) {
				return p.name, append([]string(nil), p.args...)
			}
		}
	}
	return defaultPreset.name, append([]string(nil), defaultPreset.args...)
}

// Slice exports G-code for input. An empty output writes next to input with a .gcode extension.
func (s *Slicer) Slice(ctx context.Context, input, output, intent string) (*SliceResult, error) {
	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return nil, err
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".gcode"
	}

	name, args := PresetFor(intent)
	argv := append([]string{s.binary, "-g", input, "--output", output}, args...)

	slog.Info("running slicer", "preset", name, "cmd", strings.Join(argv, " "))

	res, err := s.runner.Run(ctx, argv, filepath.Dir(input), s.timeout)
	if err != nil {
		return nil, fmt.Errorf("slicing failed: %w", err)
	}

	return &SliceResult{OutputPath: output, Preset: name, Args: args, Stdout: res.Stdout}, nil
}
