package fabrication

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/genfab/internal/executor"
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCode(t *testing.T) {
	tests := map[string]string{
		"```openscad\ncube(10);\n```":  "cube(10);",
		"```OpenSCAD\nsphere(5);\n```": "sphere(5);",
		"```\ncylinder(h=5);\n```":     "cylinder(h=5);",
		"  cube(1);  ":                 "cube(1);",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanCode(in))
	}
}

// openscadRunner writes whatever file OpenSCAD would produce at the -o path.
func openscadRunner(t *testing.T, failPreview bool) *mockRunner {
	return &mockRunner{
		runFunc: func(ctx context.Context, argv []string, dir string, timeout time.Duration) (*executor.Result, error) {
			out := argv[2]
			if strings.HasSuffix(out, ".png") {
				if failPreview {
					return nil, errors.New("no display")
				}
				return &executor.Result{}, os.WriteFile(out, []byte("png"), 0o644)
			}
			scad, err := os.ReadFile(argv[len(argv)-1])
			require.NoError(t, err)
			assert.Equal(t, "cube(10);", string(scad))
			return &executor.Result{}, os.WriteFile(out, []byte("solid cube"), 0o644)
		},
	}
}

func TestModelGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
			return &models.GenerateResponse{Text: "```openscad\ncube(10);\n```"}, nil
		},
	}
	runner := openscadRunner(t, false)
	g := NewModelGenerator(provider, runner, "", dir, time.Minute)

	res, err := g.Generate(context.Background(), "a 10mm cube", "cube")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cube.stl"), res.Path)
	assert.Equal(t, "cube.stl", res.Filename)
	assert.Equal(t, "cG5n", res.PreviewBase64)
	assert.Equal(t, "cube(10);", res.Code)

	require.Len(t, provider.requests, 1)
	seed := provider.requests[0].Turns[0].(models.ModelTurn)
	assert.Contains(t, seed.Text(), "a 10mm cube")

	require.Len(t, runner.calls, 2)
	assert.Equal(t, DefaultOpenSCADBinary, runner.calls[0][0])
	assert.Contains(t, runner.calls[1], "--colorscheme=DeepOcean")
}

func TestModelGenerator_PreviewFailureIsNotFatal(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
			return &models.GenerateResponse{Text: "cube(10);"}, nil
		},
	}
	g := NewModelGenerator(provider, openscadRunner(t, true), "openscad", t.TempDir(), 0)

	res, err := g.Generate(context.Background(), "cube", "part.stl")

	require.NoError(t, err)
	assert.Equal(t, "part.stl", res.Filename)
	assert.Empty(t, res.PreviewBase64)
}

func TestModelGenerator_Errors(t *testing.T) {
	okProvider := &mockProvider{
		generateFunc: func(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
			return &models.GenerateResponse{Text: "cube(10);"}, nil
		},
	}

	t.Run("no provider", func(t *testing.T) {
		g := NewModelGenerator(nil, &mockRunner{}, "", t.TempDir(), 0)
		_, err := g.Generate(context.Background(), "cube", "c")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("empty prompt", func(t *testing.T) {
		g := NewModelGenerator(okProvider, &mockRunner{}, "", t.TempDir(), 0)
		_, err := g.Generate(context.Background(), "  ", "c")
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("bad filename", func(t *testing.T) {
		g := NewModelGenerator(okProvider, &mockRunner{}, "", t.TempDir(), 0)
		_, err := g.Generate(context.Background(), "cube", "")
		assert.ErrorIs(t, err, ErrInvalidOutName)
	})

	t.Run("provider error", func(t *testing.T) {
		p := &mockProvider{
			generateFunc: func(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
				return nil, &models.ProviderError{Code: models.ErrorCodeRateLimit, Message: "slow"}
			},
		}
		g := NewModelGenerator(p, &mockRunner{}, "", t.TempDir(), 0)
		_, err := g.Generate(context.Background(), "cube", "c")
		assert.ErrorIs(t, err, models.ErrRateLimit)
	})

	t.Run("empty code", func(t *testing.T) {
		p := &mockProvider{
			generateFunc: func(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
				return &models.GenerateResponse{Text: "```\n```"}, nil
			},
		}
		g := NewModelGenerator(p, &mockRunner{}, "", t.TempDir(), 0)
		_, err := g.Generate(context.Background(), "cube", "c")
		assert.ErrorIs(t, err, ErrEmptyCode)
	})

	t.Run("no mesh written", func(t *testing.T) {
		g := NewModelGenerator(okProvider, &mockRunner{}, "", t.TempDir(), 0)
		_, err := g.Generate(context.Background(), "cube", "c")
		assert.ErrorIs(t, err, ErrCompileFailed)
	})
}
