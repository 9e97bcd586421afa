package tool

import "errors"

var (
	// ErrUnknownTool is returned when a subset names a tool that was never registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when call arguments cannot be decoded into the request type.
	ErrInvalidArguments = errors.New("invalid arguments")
)
