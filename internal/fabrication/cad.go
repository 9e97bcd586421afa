package fabrication

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Cyclone1070/genfab/internal/executor"
	"github.com/Cyclone1070/genfab/internal/provider/models"
)

// DefaultOpenSCADBinary is used when no OpenSCAD path is configured.
const DefaultOpenSCADBinary = "openscad"

const scadPromptTemplate = `Write a valid OpenSCAD script to create a 3D model of: %s.

Requirements:
1. The model must be centered at [0,0,0].
2. The model size should be reasonable (approx 20mm to 100mm bounding box) unless specified otherwise.
3. Use standard OpenSCAD primitives (cube, cylinder, sphere) and transformations (translate, rotate, union, difference).
4. Ensure the code is syntax-error free.
5. CRITICAL: The model MUST be "3D Print Ready". This means:
   - It must be Manifold (watertight).
   - It must have NO self-intersections.
   - Walls must be thick enough for FDM printing (> 1-2mm).
   - Avoid floating parts; everything must be connected.
6. Output ONLY the OpenSCAD code. Do not include markdown formatting or explanations.`

var codeFence = regexp.MustCompile("(?i)```(openscad|scad)?")

// GenerateResult describes a generated model.
type GenerateResult struct {
	Path          string `json:"path"`
	Filename      string `json:"filename"`
	PreviewBase64 string `json:"image_base64,omitempty"`
	Code          string `json:"-"`
	Message       string `json:"message"`
}

// ModelGenerator asks the reasoning service for OpenSCAD code and compiles it.
type ModelGenerator struct {
	provider models.Provider
	runner   executor.Runner
	binary   string
	outDir   string
	timeout  time.Duration
}

// NewModelGenerator creates a ModelGenerator writing meshes to outDir.
// provider may be nil when no API key is configured; Generate then fails fast.
func NewModelGenerator(provider models.Provider, runner executor.Runner, binary, outDir string, timeout time.Duration) *ModelGenerator {
	if binary == "" {
		binary = DefaultOpenSCADBinary
	}
	return &ModelGenerator{provider: provider, runner: runner, binary: binary, outDir: outDir, timeout: timeout}
}

// Generate produces <outDir>/<filename>.stl plus a PNG preview.
func (g *ModelGenerator) Generate(ctx context.Context, prompt, filename string) (*GenerateResult, error) {
	if g.provider == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	stlPath, err := g.outputPath(filename)
	if err != nil {
		return nil, err
	}

	slog.Info("generating OpenSCAD code", "prompt", prompt)
	resp, err := g.provider.Generate(ctx, &models.GenerateRequest{
		Turns: []models.Turn{
			models.ModelTurn{Role: models.RoleUser, Parts: []models.Part{
				models.TextPart{Text: fmt.Sprintf(scadPromptTemplate, prompt)},
			}},
		},
		Config: &models.GenerateConfig{Effort: models.EffortHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("code generation failed: %w", err)
	}

	code := CleanCode(resp.Text)
	if code == "" {
		return nil, ErrEmptyCode
	}

	preview, err := g.compile(ctx, code, stlPath)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Path:          stlPath,
		Filename:      filepath.Base(stlPath),
		PreviewBase64: preview,
		Code:          code,
		Message:       fmt.Sprintf("Successfully generated %s", filepath.Base(stlPath)),
	}, nil
}

// compile writes code to a temp file, renders the STL and a best-effort PNG preview.
func (g *ModelGenerator) compile(ctx context.Context, code, stlPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(stlPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create model dir: %w", err)
	}

	scad, err := os.CreateTemp("", "genfab-*.scad")
	if err != nil {
		return "", fmt.Errorf("failed to create scad file: %w", err)
	}
	defer os.Remove(scad.Name())

	if _, err := scad.WriteString(code); err != nil {
		scad.Close()
		return "", fmt.Errorf("failed to write scad file: %w", err)
	}
	if err := scad.Close(); err != nil {
		return "", err
	}

	slog.Info("compiling OpenSCAD", "output", stlPath)
	if _, err := g.runner.Run(ctx, []string{g.binary, "-o", stlPath, scad.Name()}, "", g.timeout); err != nil {
		return "", fmt.Errorf("OpenSCAD failed: %w", err)
	}
	if fi, err := os.Stat(stlPath); err != nil || fi.Size() == 0 {
		return "", ErrCompileFailed
	}

	pngPath := strings.TrimSuffix(stlPath, ".stl") + ".png"
	argv := []string{g.binary, "-o", pngPath, "--imgsize=800,600", "--colorscheme=DeepOcean", scad.Name()}
	if _, err := g.runner.Run(ctx, argv, "", g.timeout); err != nil {
		slog.Warn("preview render failed", "error", err)
		return "", nil
	}

	data, err := os.ReadFile(pngPath)
	if err != nil {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (g *ModelGenerator) outputPath(filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidOutName, filename)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".stl") {
		name += ".stl"
	}
	return filepath.Join(g.outDir, name), nil
}

// CleanCode strips markdown fences the model adds despite being told not to.
func CleanCode(code string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(code, ""))
}
