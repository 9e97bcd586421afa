package fabrication

import (
	"context"
	"time"

	"github.com/Cyclone1070/genfab/internal/executor"
	"github.com/Cyclone1070/genfab/internal/provider/models"
)

// mockRunner implements executor.Runner for testing.
type mockRunner struct {
	runFunc func(ctx context.Context, argv []string, dir string, timeout time.Duration) (*executor.Result, error)
	calls   [][]string
}

func (m *mockRunner) Run(ctx context.Context, argv []string, dir string, timeout time.Duration) (*executor.Result, error) {
	m.calls = append(m.calls, argv)
	if m.runFunc != nil {
		return m.runFunc(ctx, argv, dir, timeout)
	}
	return &executor.Result{}, nil
}

// mockProvider implements models.Provider for testing.
type mockProvider struct {
	generateFunc func(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
	requests     []*models.GenerateRequest
}

func (m *mockProvider) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &models.GenerateResponse{}, nil
}

func (m *mockProvider) GetModel() string { return "mock" }
