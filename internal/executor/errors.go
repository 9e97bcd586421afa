package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a command exceeds its timeout.
	ErrTimeout = errors.New("command timeout")

	// ErrEmptyCommand is returned when no argv is given.
	ErrEmptyCommand = errors.New("empty command")
)

// CommandError represents a command that could not be started or exited non-zero.
type CommandError struct {
	Cmd      string
	Stage    string // "start", "execution"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %s failed at %s (exit %d): %v: %s", e.Cmd, e.Stage, e.ExitCode, e.Cause, e.Stderr)
	}
	return fmt.Sprintf("command %s failed at %s: %v", e.Cmd, e.Stage, e.Cause)
}

func (e *CommandError) Unwrap() error { return e.Cause }
