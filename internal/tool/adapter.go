package tool

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by request types that check their own fields.
type Validator interface {
	Validate() error
}

// Handler executes a tool with a typed request and returns a typed response.
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Func adapts a typed handler to the Tool interface.
// It centralizes argument decoding (mapstructure, keyed by `json` tags)
// and request validation so handlers only see well-formed input.
type Func[Req, Resp any] struct {
	declaration Declaration
	handler     Handler[Req, Resp]
}

// NewFunc creates a tool from a declaration and a typed handler.
func NewFunc[Req, Resp any](name, description string, params *Schema, handler Handler[Req, Resp]) *Func[Req, Resp] {
	return &Func[Req, Resp]{
		declaration: Declaration{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
		handler: handler,
	}
}

// Name implements Tool.
func (f *Func[Req, Resp]) Name() string {
	return f.declaration.Name
}

// Declaration implements Tool.
func (f *Func[Req, Resp]) Declaration() Declaration {
	return f.declaration
}

// Execute implements Tool.
func (f *Func[Req, Resp]) Execute(ctx context.Context, args map[string]any) (any, error) {
	var req Req

	if len(args) > 0 {
		if err := decodeArgs(args, &req); err != nil {
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, f.declaration.Name, err)
		}
	}

	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%s validation failed: %w", f.declaration.Name, err)
		}
	}

	return f.handler(ctx, req)
}

func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
