package analysis

import (
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/workflow"
)

// Request is one analysis invocation.
type Request struct {
	Image    []byte
	MIMEType string
	Effort   models.Effort
	// Prompt replaces the default prompt when non-empty.
	Prompt string
	// Tools is the enabled subset by name; nil selects the driver defaults
	// and an empty slice disables tool use.
	Tools []string
	// Events receives progress events without blocking; may be nil.
	Events chan<- workflow.Event
}

// Result is the outcome of a run: Success or Failure.
type Result interface {
	isResult()
	// CallCount returns the number of reasoning-service calls made.
	CallCount() int
}

// Success carries the final answer verbatim. Text is not re-validated against the schema.
type Success struct {
	RunID        string
	Text         string
	Image        []byte
	MIMEType     string
	Calls        int
	Conversation *models.Conversation
}

func (Success) isResult() {}

// CallCount implements Result.
func (s Success) CallCount() int { return s.Calls }

// Failure explains why no answer was produced.
type Failure struct {
	RunID        string
	Reason       string
	Err          error
	Calls        int
	Conversation *models.Conversation
}

func (Failure) isResult() {}

// CallCount implements Result.
func (f Failure) CallCount() int { return f.Calls }

// Error lets a Failure be returned where an error is expected.
func (f Failure) Error() string { return f.Reason }

// Unwrap returns the underlying error.
func (f Failure) Unwrap() error { return f.Err }
