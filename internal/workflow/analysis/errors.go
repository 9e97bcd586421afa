package analysis

import "errors"

var (
	// ErrReasoningNotConfigured is returned when no reasoning provider is available.
	ErrReasoningNotConfigured = errors.New("reasoning service not configured: missing API key")

	// ErrNoImage is returned when a request carries no image.
	ErrNoImage = errors.New("no image supplied")

	// ErrInvalidEffort is returned for effort levels other than LOW and HIGH.
	ErrInvalidEffort = errors.New("invalid effort level")

	// ErrTooManyToolTurns is returned when the turn bound is reached without a final answer.
	ErrTooManyToolTurns = errors.New("too many tool turns")
)

// ReasonTooManyToolTurns is the Failure reason reported on turn exhaustion.
const ReasonTooManyToolTurns = "Too many tool turns"
