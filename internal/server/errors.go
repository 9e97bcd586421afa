package server

import "errors"

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownTool     = errors.New("unknown tool")
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError       = -32700
	codeInvalidRequest   = -32600
	codeMethodNotFound   = -32601
	codeInvalidParams    = -32602
	codeInternalError    = -32603
	codeResourceNotFound = -32002
)
