package models

import "github.com/Cyclone1070/genfab/internal/tool"

// Effort trades latency for reasoning depth in the reasoning service.
type Effort string

const (
	EffortLow  Effort = "LOW"
	EffortHigh Effort = "HIGH"
)

// Valid reports whether e is a known effort level.
func (e Effort) Valid() bool {
	return e == EffortLow || e == EffortHigh
}

// GenerateRequest encapsulates all parameters for a generation request.
type GenerateRequest struct {
	// Turns is the full conversation so far, in order.
	Turns []Turn

	// Tools contains tool declarations the model may call.
	Tools []tool.Declaration

	// Config contains optional generation parameters
	Config *GenerateConfig
}

// GenerateConfig contains optional generation parameters.
// Pointer fields distinguish "not set" from the zero value.
type GenerateConfig struct {
	Effort Effort

	// ResponseMIMEType constrains the final answer format (e.g. "application/json").
	ResponseMIMEType string

	// ResponseSchema constrains the shape of the final answer.
	ResponseSchema *tool.Schema

	Temperature     *float32
	MaxOutputTokens *int32
}

// GenerateResponse contains the model's response and metadata.
type GenerateResponse struct {
	// Text is the concatenated non-thought text of the response.
	Text string

	// FunctionCalls are the calls requested by the model, in order.
	FunctionCalls []FunctionCall

	Metadata ResponseMetadata
}

// HasFunctionCalls reports whether the model asked for tool execution.
func (r *GenerateResponse) HasFunctionCalls() bool {
	return len(r.FunctionCalls) > 0
}

// ResponseMetadata contains information about the generation.
type ResponseMetadata struct {
	PromptTokens     int
	CompletionTokens int
	ThoughtsTokens   int
	TotalTokens      int
	ModelUsed        string
	FinishReason     string
}
