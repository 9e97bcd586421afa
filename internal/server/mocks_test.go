package server

import (
	"context"
	"errors"

	"github.com/Cyclone1070/genfab/internal/camera"
	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/fabrication"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
)

type mockDevice struct {
	InfoFunc   func(ctx context.Context) (device.Info, error)
	StatusFunc func(ctx context.Context) (device.Status, error)
	PauseFunc  func(ctx context.Context) (device.CommandResult, error)
	ResumeFunc func(ctx context.Context) (device.CommandResult, error)
	StopFunc   func(ctx context.Context) (device.CommandResult, error)
	UploadFunc func(ctx context.Context, path string) (device.CommandResult, error)
}

var errNotMocked = errors.New("not mocked")

func (m *mockDevice) Info(ctx context.Context) (device.Info, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return device.Info{}, errNotMocked
}

func (m *mockDevice) Status(ctx context.Context) (device.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return device.Status{}, errNotMocked
}

func (m *mockDevice) Pause(ctx context.Context) (device.CommandResult, error) {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx)
	}
	return device.CommandResult{}, errNotMocked
}

func (m *mockDevice) Resume(ctx context.Context) (device.CommandResult, error) {
	if m.ResumeFunc != nil {
		return m.ResumeFunc(ctx)
	}
	return device.CommandResult{}, errNotMocked
}

func (m *mockDevice) Stop(ctx context.Context) (device.CommandResult, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx)
	}
	return device.CommandResult{}, errNotMocked
}

func (m *mockDevice) UploadFile(ctx context.Context, path string) (device.CommandResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, path)
	}
	return device.CommandResult{}, errNotMocked
}

type mockGrabber struct {
	CaptureFunc func(ctx context.Context) (camera.Frame, error)
}

func (m *mockGrabber) Capture(ctx context.Context) (camera.Frame, error) {
	return m.CaptureFunc(ctx)
}

type mockAnalyzer struct {
	RunFunc func(ctx context.Context, req analysis.Request) analysis.Result
}

func (m *mockAnalyzer) Run(ctx context.Context, req analysis.Request) analysis.Result {
	return m.RunFunc(ctx, req)
}

type mockSlicer struct {
	SliceFunc func(ctx context.Context, input, output, intent string) (*fabrication.SliceResult, error)
}

func (m *mockSlicer) Slice(ctx context.Context, input, output, intent string) (*fabrication.SliceResult, error) {
	return m.SliceFunc(ctx, input, output, intent)
}

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt, filename string) (*fabrication.GenerateResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt, filename string) (*fabrication.GenerateResult, error) {
	return m.GenerateFunc(ctx, prompt, filename)
}
