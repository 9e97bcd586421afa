package server

import (
	"context"

	"github.com/Cyclone1070/genfab/internal/fabrication"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
)

type analyzer interface {
	Run(ctx context.Context, req analysis.Request) analysis.Result
}

type slicer interface {
	Slice(ctx context.Context, input, output, intent string) (*fabrication.SliceResult, error)
}

type modelGenerator interface {
	Generate(ctx context.Context, prompt, filename string) (*fabrication.GenerateResult, error)
}
