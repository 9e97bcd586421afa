package app

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/genfab/internal/camera"
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/workflow"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
)

type runner interface {
	Run(ctx context.Context, req analysis.Request) analysis.Result
}

// FrameAnalyzer captures a camera frame and analyses it.
type FrameAnalyzer struct {
	Camera camera.Grabber
	Driver runner
	Effort models.Effort
}

// Analyze implements the dashboard's analyzer.
func (a *FrameAnalyzer) Analyze(ctx context.Context, events chan<- workflow.Event) analysis.Result {
	if a.Camera == nil {
		return analysis.Failure{Reason: camera.ErrCameraNotConfigured.Error(), Err: camera.ErrCameraNotConfigured}
	}
	frame, err := a.Camera.Capture(ctx)
	if err != nil {
		err = fmt.Errorf("failed to capture image: %w", err)
		return analysis.Failure{Reason: err.Error(), Err: err}
	}
	return a.Driver.Run(ctx, analysis.Request{
		Image:    frame.Data,
		MIMEType: frame.MIMEType,
		Effort:   a.Effort,
		Events:   events,
	})
}
