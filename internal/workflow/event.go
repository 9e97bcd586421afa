package workflow

// Event is the interface for all analysis progress events.
// Consumers handle events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each reasoning-service call.
type ThinkingEvent struct {
	RunID string
	Turn  int
}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted when the reasoning service produces text.
type TextEvent struct {
	RunID string
	Text  string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a requested function call is dispatched.
type ToolStartEvent struct {
	RunID    string
	ToolName string
	Args     map[string]any
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a function call has produced its result.
type ToolEndEvent struct {
	RunID    string
	ToolName string
	IsError  bool
	Summary  string
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted exactly once when a run finishes.
type DoneEvent struct {
	RunID     string
	Succeeded bool
	Calls     int
	Reason    string
}

func (DoneEvent) isEvent() {}

// Emit sends ev on events without blocking. A nil channel drops the event.
func Emit(events chan<- Event, ev Event) bool {
	if events == nil {
		return false
	}
	select {
	case events <- ev:
		return true
	default:
		return false
	}
}
