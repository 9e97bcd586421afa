package gemini

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/tool"
	"google.golang.org/genai"
)

// toGeminiContents converts conversation turns to Gemini Content format.
// Consecutive function results are merged into a single user content, since
// Gemini expects all responses to a model turn's calls in one message.
func toGeminiContents(turns []models.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))

	var pending []*genai.Part
	flush := func() {
		if len(pending) > 0 {
			contents = append(contents, genai.NewContentFromParts(pending, genai.RoleUser))
			pending = nil
		}
	}

	for _, turn := range turns {
		if result, ok := turn.(models.FunctionResultTurn); ok {
			pending = append(pending, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       result.ID,
					Name:     result.Name,
					Response: result.Response,
				},
			})
			continue
		}

		flush()
		if content := turnToGeminiContent(turn); content != nil {
			contents = append(contents, content)
		}
	}
	flush()

	return contents
}

// turnToGeminiContent converts a single non-result turn.
func turnToGeminiContent(turn models.Turn) *genai.Content {
	parts := make([]*genai.Part, 0)

	switch t := turn.(type) {
	case models.ModelTurn:
		for _, p := range t.Parts {
			switch part := p.(type) {
			case models.TextPart:
				if part.Text != "" {
					parts = append(parts, genai.NewPartFromText(part.Text))
				}
			case models.ImagePart:
				if len(part.Data) > 0 {
					parts = append(parts, genai.NewPartFromBytes(part.Data, part.MIMEType))
				}
			}
		}

	case models.FunctionCallTurn:
		if t.Text != "" {
			parts = append(parts, genai.NewPartFromText(t.Text))
		}
		for _, call := range t.Calls {
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Args,
				},
				ThoughtSignature: call.Signature,
			})
		}
	}

	// Skip empty turns
	if len(parts) == 0 {
		return nil
	}

	return genai.NewContentFromParts(parts, genai.Role(turn.TurnRole()))
}

// toGeminiConfig converts internal GenerateConfig to Gemini config.
func toGeminiConfig(config *models.GenerateConfig, mediaResolution genai.MediaResolution) *genai.GenerateContentConfig {
	geminiConfig := &genai.GenerateContentConfig{
		SafetySettings:  defaultSafetySettings(),
		MediaResolution: mediaResolution,
	}

	if config == nil {
		return geminiConfig
	}

	if config.Effort != "" {
		geminiConfig.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingLevel:   toThinkingLevel(config.Effort),
		}
	}
	if config.ResponseMIMEType != "" {
		geminiConfig.ResponseMIMEType = config.ResponseMIMEType
	}
	if config.ResponseSchema != nil {
		geminiConfig.ResponseSchema = toGeminiSchema(config.ResponseSchema)
	}
	if config.Temperature != nil {
		geminiConfig.Temperature = config.Temperature
	}
	if config.MaxOutputTokens != nil {
		geminiConfig.MaxOutputTokens = *config.MaxOutputTokens
	}

	return geminiConfig
}

func toThinkingLevel(effort models.Effort) genai.ThinkingLevel {
	switch effort {
	case models.EffortLow:
		return genai.ThinkingLevelLow
	case models.EffortHigh:
		return genai.ThinkingLevelHigh
	default:
		return genai.ThinkingLevelUnspecified
	}
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
		}
		if decl.Parameters != nil {
			fd.Parameters = toGeminiSchema(decl.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool Schema to a Gemini Schema, recursively.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}

	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if len(s.Required) > 0 {
		schema.Required = s.Required
	}
	if s.Items != nil {
		schema.Items = toGeminiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}

	return schema
}

// toGeminiType converts a tool Type to a Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to internal format.
func fromGeminiResponse(resp *genai.GenerateContentResponse, modelUsed string) (*models.GenerateResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, &models.ProviderError{
				Code:    models.ErrorCodeContentBlocked,
				Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
			}
		}
		return nil, &models.ProviderError{
			Code:    models.ErrorCodeEmptyResponse,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &models.ProviderError{
			Code:    models.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}

	response := buildResponse(candidate, resp.UsageMetadata, modelUsed)

	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		// Return partial response with error
		return response, &models.ProviderError{
			Code:    models.ErrorCodeContextLength,
			Message: "response truncated due to max tokens",
		}
	}

	return response, nil
}

// buildResponse collects text and function calls from a candidate.
// Thought parts are never part of the answer text.
func buildResponse(candidate *genai.Candidate, usage *genai.GenerateContentResponseUsageMetadata, modelUsed string) *models.GenerateResponse {
	response := &models.GenerateResponse{
		Metadata: buildMetadata(usage, modelUsed),
	}
	response.Metadata.FinishReason = string(candidate.FinishReason)

	if candidate.Content == nil {
		return response
	}

	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			response.FunctionCalls = append(response.FunctionCalls, models.FunctionCall{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Args:      part.FunctionCall.Args,
				Signature: part.ThoughtSignature,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			response.Text += part.Text
		}
	}

	return response
}

// buildMetadata builds response metadata from usage data.
func buildMetadata(usage *genai.GenerateContentResponseUsageMetadata, modelUsed string) models.ResponseMetadata {
	metadata := models.ResponseMetadata{
		ModelUsed: modelUsed,
	}

	if usage != nil {
		metadata.PromptTokens = int(usage.PromptTokenCount)
		metadata.CompletionTokens = int(usage.CandidatesTokenCount)
		metadata.ThoughtsTokens = int(usage.ThoughtsTokenCount)
		metadata.TotalTokens = int(usage.TotalTokenCount)
	}

	return metadata
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			// Generic network error
			return &models.ProviderError{
				Code:       models.ErrorCodeNetwork,
				Message:    "network error",
				Underlying: err,
			}
		}
		apiErr = *apiErrPtr
	}

	switch apiErr.Code {
	case 401, 403:
		return &models.ProviderError{
			Code:       models.ErrorCodeAuth,
			Message:    "authentication failed",
			Underlying: err,
		}
	case 429:
		return &models.ProviderError{
			Code:       models.ErrorCodeRateLimit,
			Message:    "rate limit exceeded",
			Underlying: err,
		}
	case 400:
		return &models.ProviderError{
			Code:       models.ErrorCodeInvalidRequest,
			Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
			Underlying: err,
		}
	case 500, 502, 503, 504:
		return &models.ProviderError{
			Code:       models.ErrorCodeUnavailable,
			Message:    "service unavailable",
			Underlying: err,
		}
	default:
		return &models.ProviderError{
			Code:       models.ErrorCodeNetwork,
			Message:    fmt.Sprintf("API error: %s", apiErr.Message),
			Underlying: err,
		}
	}
}
