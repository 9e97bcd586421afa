package ui

import (
	"context"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/workflow"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
)

// Printer is the part of the device the dashboard reads and controls.
type Printer interface {
	Info(ctx context.Context) (device.Info, error)
	Status(ctx context.Context) (device.Status, error)
	Pause(ctx context.Context) (device.CommandResult, error)
	Resume(ctx context.Context) (device.CommandResult, error)
	Stop(ctx context.Context) (device.CommandResult, error)
}

// Analyzer captures a frame and runs one failure analysis, reporting progress on events.
type Analyzer interface {
	Analyze(ctx context.Context, events chan<- workflow.Event) analysis.Result
}
