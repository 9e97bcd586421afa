// Package analysis runs the bounded multi-turn failure analysis: the reasoning
// service sees a camera frame, may call device tools, and must settle on a
// structured verdict within a fixed number of calls.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/tool"
	"github.com/Cyclone1070/genfab/internal/workflow"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultMaxTurns bounds the reasoning-service calls per run.
	DefaultMaxTurns = 5

	jsonMIMEType = "application/json"
)

// Options configures a Driver.
type Options struct {
	// MaxTurns bounds reasoning-service calls; <= 0 selects DefaultMaxTurns.
	MaxTurns int
	// DefaultTools is enabled when a request leaves Tools nil; empty enables every registered tool.
	DefaultTools []string
	Logger       *slog.Logger
}

// Driver runs analyses. It holds no per-run state and is safe for concurrent use.
type Driver struct {
	provider     reasoningProvider
	registry     *tool.Registry
	maxTurns     int
	defaultTools []string
	logger       *slog.Logger
}

// NewDriver creates a Driver. A nil provider means the reasoning service is not
// configured; every run then fails before spending a turn.
func NewDriver(provider reasoningProvider, registry *tool.Registry, opts Options) *Driver {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Driver{
		provider:     provider,
		registry:     registry,
		maxTurns:     opts.MaxTurns,
		defaultTools: opts.DefaultTools,
		logger:       opts.Logger,
	}
}

// MaxTurns returns the configured turn bound.
func (d *Driver) MaxTurns() int {
	return d.maxTurns
}

// Run executes one analysis. It always returns a Success or a Failure.
func (d *Driver) Run(ctx context.Context, req Request) (result Result) {
	runID := uuid.NewString()
	logger := d.logger.With("run_id", runID)

	defer func() {
		done := workflow.DoneEvent{RunID: runID, Calls: result.CallCount()}
		switch r := result.(type) {
		case Success:
			done.Succeeded = true
			logger.Info("analysis finished", "calls", r.Calls)
		case Failure:
			done.Reason = r.Reason
			logger.Warn("analysis failed", "calls", r.Calls, "reason", r.Reason)
		}
		workflow.Emit(req.Events, done)
	}()

	if d.provider == nil {
		return Failure{RunID: runID, Reason: ErrReasoningNotConfigured.Error(), Err: ErrReasoningNotConfigured}
	}
	if len(req.Image) == 0 {
		return Failure{RunID: runID, Reason: ErrNoImage.Error(), Err: ErrNoImage}
	}

	effort := req.Effort
	if effort == "" {
		effort = models.EffortLow
	}
	if !effort.Valid() {
		err := fmt.Errorf("%w: %q", ErrInvalidEffort, req.Effort)
		return Failure{RunID: runID, Reason: err.Error(), Err: err}
	}

	tools, err := d.enabledTools(req.Tools)
	if err != nil {
		return Failure{RunID: runID, Reason: err.Error(), Err: err}
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultPrompt(effort)
	}

	conv := models.NewConversation(models.ModelTurn{
		Role: models.RoleUser,
		Parts: []models.Part{
			models.ImagePart{Data: req.Image, MIMEType: mimeType},
			models.TextPart{Text: prompt},
		},
	})

	config := &models.GenerateConfig{
		Effort:           effort,
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   ResponseSchema(effort),
	}
	decls := tools.Declarations()

	logger.Info("analysis started", "effort", effort, "tools", tools.Names(), "max_turns", d.maxTurns)

	calls := 0
	for calls < d.maxTurns {
		workflow.Emit(req.Events, workflow.ThinkingEvent{RunID: runID, Turn: calls + 1})

		resp, err := d.provider.Generate(ctx, &models.GenerateRequest{
			Turns:  conv.Turns(),
			Tools:  decls,
			Config: config,
		})
		calls++
		if err != nil {
			return Failure{RunID: runID, Reason: err.Error(), Err: err, Calls: calls, Conversation: conv}
		}

		if resp.Text != "" {
			workflow.Emit(req.Events, workflow.TextEvent{RunID: runID, Text: resp.Text})
		}

		if !resp.HasFunctionCalls() {
			conv.Append(models.ModelTurn{
				Role:  models.RoleModel,
				Parts: []models.Part{models.TextPart{Text: resp.Text}},
			})
			return Success{
				RunID:        runID,
				Text:         resp.Text,
				Image:        req.Image,
				MIMEType:     mimeType,
				Calls:        calls,
				Conversation: conv,
			}
		}

		conv.Append(models.FunctionCallTurn{Text: resp.Text, Calls: resp.FunctionCalls})
		for _, call := range resp.FunctionCalls {
			conv.Append(d.dispatch(ctx, logger, runID, tools, call, req.Events))
		}
	}

	return Failure{
		RunID:        runID,
		Reason:       ReasonTooManyToolTurns,
		Err:          ErrTooManyToolTurns,
		Calls:        calls,
		Conversation: conv,
	}
}

// enabledTools resolves the request's tool subset. nil selects the defaults
// (or every registered tool when there are none); an empty list disables tools.
func (d *Driver) enabledTools(names []string) (*tool.Registry, error) {
	if names == nil {
		if len(d.defaultTools) == 0 {
			return d.registry, nil
		}
		names = d.defaultTools
	}
	return d.registry.Subset(names)
}

// dispatch executes one function call and wraps the outcome as a result turn.
// Unknown names and handler failures are reported to the model, never to the caller.
func (d *Driver) dispatch(ctx context.Context, logger *slog.Logger, runID string, tools *tool.Registry, call models.FunctionCall, events chan<- workflow.Event) models.FunctionResultTurn {
	workflow.Emit(events, workflow.ToolStartEvent{RunID: runID, ToolName: call.Name, Args: call.Args})

	response := d.execute(ctx, tools, call)

	turn := models.FunctionResultTurn{ID: call.ID, Name: call.Name, Response: response}
	summary, _ := json.MarshalToString(response)
	workflow.Emit(events, workflow.ToolEndEvent{RunID: runID, ToolName: call.Name, IsError: turn.IsError(), Summary: summary})

	if turn.IsError() {
		logger.Warn("tool call failed", "tool", call.Name, "error", response["error"])
	} else {
		logger.Debug("tool call succeeded", "tool", call.Name)
	}
	return turn
}

func (d *Driver) execute(ctx context.Context, tools *tool.Registry, call models.FunctionCall) (response map[string]any) {
	t, ok := tools.Resolve(call.Name)
	if !ok {
		return errorResponse(fmt.Sprintf("Unknown function %s", call.Name))
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panicked", "tool", call.Name, "panic", r, "stack", string(debug.Stack()))
			response = errorResponse(fmt.Sprintf("tool %s panicked: %v", call.Name, r))
		}
	}()

	out, err := t.Execute(ctx, call.Args)
	if err != nil {
		return errorResponse(err.Error())
	}

	normalized, err := normalize(out)
	if err != nil {
		return errorResponse(fmt.Sprintf("tool %s returned a non-JSON result: %v", call.Name, err))
	}
	return map[string]any{"result": normalized}
}

// normalize round-trips v through JSON so results are plain maps, slices and scalars.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func errorResponse(msg string) map[string]any {
	return map[string]any{"error": msg}
}
