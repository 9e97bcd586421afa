package analysis

import (
	"context"

	"github.com/Cyclone1070/genfab/internal/provider/models"
)

// reasoningProvider produces the next model turn for a conversation.
type reasoningProvider interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
}
