package fabrication

import "errors"

var (
	ErrInputNotFound  = errors.New("input file not found")
	ErrEmptyPrompt    = errors.New("model description is empty")
	ErrEmptyCode      = errors.New("model returned no OpenSCAD code")
	ErrCompileFailed  = errors.New("OpenSCAD produced no mesh")
	ErrNotConfigured  = errors.New("reasoning service not configured")
	ErrInvalidOutName = errors.New("invalid output filename")
)
