package gemini

import (
	"context"
	"sync"

	"github.com/Cyclone1070/genfab/internal/provider/models"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-flash-preview"

// GeminiProvider implements models.Provider for Google Gemini.
// It holds no per-conversation state and is safe for concurrent use.
type GeminiProvider struct {
	client          GeminiClient
	mu              sync.RWMutex
	modelName       string
	mediaResolution genai.MediaResolution
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		client:          client,
		modelName:       modelName,
		mediaResolution: genai.MediaResolutionMedium,
	}
}

// Generate sends the conversation to the Gemini API and returns the response.
func (p *GeminiProvider) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	p.mu.RLock()
	model := p.modelName
	resolution := p.mediaResolution
	p.mu.RUnlock()

	contents := toGeminiContents(req.Turns)
	config := toGeminiConfig(req.Config, resolution)
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	resp, err := p.client.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp, model)
}

// SetModel changes the active model at runtime.
func (p *GeminiProvider) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelName = model
}

// GetModel returns the currently active model name.
func (p *GeminiProvider) GetModel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelName
}

// SetMediaResolution sets the tokenization quality used for inline images.
func (p *GeminiProvider) SetMediaResolution(res genai.MediaResolution) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mediaResolution = res
}
