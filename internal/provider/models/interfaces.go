package models

import "context"

// Provider defines the interface for reasoning service backends.
type Provider interface {
	// Generate sends the conversation to the model and returns its response.
	// It may return a partial response AND an error (e.g. ErrContextLengthExceeded).
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// GetModel returns the active model name.
	GetModel() string
}
