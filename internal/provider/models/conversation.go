package models

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry in a conversation. Turns are immutable once appended.
// Concrete types: ModelTurn, FunctionCallTurn, FunctionResultTurn.
type Turn interface {
	isTurn()
	// TurnRole returns the role the reasoning service attributes the turn to.
	TurnRole() Role
}

// Part is a piece of ModelTurn content.
// Concrete types: TextPart, ImagePart.
type Part interface {
	isPart()
}

// TextPart is plain text content.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ImagePart is inline image content.
type ImagePart struct {
	Data     []byte
	MIMEType string
}

func (ImagePart) isPart() {}

// ModelTurn carries content parts. The conversation seed is a user ModelTurn;
// a final answer is a model ModelTurn.
type ModelTurn struct {
	Role  Role
	Parts []Part
}

func (ModelTurn) isTurn() {}

// TurnRole implements Turn.
func (t ModelTurn) TurnRole() Role { return t.Role }

// Text concatenates the text parts of the turn.
func (t ModelTurn) Text() string {
	var text string
	for _, p := range t.Parts {
		if tp, ok := p.(TextPart); ok {
			text += tp.Text
		}
	}
	return text
}

// FunctionCall is a request from the reasoning service to invoke a named tool.
type FunctionCall struct {
	ID   string
	Name string
	Args map[string]any

	// Signature is the opaque thought signature attached by the service.
	// It must be echoed back unchanged when the call is replayed.
	Signature []byte
}

// FunctionCallTurn is the model's turn that requested one or more function calls.
type FunctionCallTurn struct {
	// Text is any text the model produced alongside the calls.
	Text  string
	Calls []FunctionCall
}

func (FunctionCallTurn) isTurn() {}

// TurnRole implements Turn.
func (FunctionCallTurn) TurnRole() Role { return RoleModel }

// FunctionResultTurn carries the outcome of one function call.
// Response is either {"result": <value>} or {"error": <message>}.
type FunctionResultTurn struct {
	ID       string
	Name     string
	Response map[string]any
}

func (FunctionResultTurn) isTurn() {}

// TurnRole implements Turn.
func (FunctionResultTurn) TurnRole() Role { return RoleUser }

// IsError reports whether the result carries an error payload.
func (t FunctionResultTurn) IsError() bool {
	_, ok := t.Response["error"]
	return ok
}

// Conversation is an append-only ordered sequence of turns owned by a single analysis run.
type Conversation struct {
	turns []Turn
}

// NewConversation creates a conversation starting with the given seed turns.
func NewConversation(seed ...Turn) *Conversation {
	c := &Conversation{turns: make([]Turn, 0, len(seed)+8)}
	for _, t := range seed {
		c.Append(t)
	}
	return c
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of the turns in order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Last returns the most recent turn, or nil if the conversation is empty.
func (c *Conversation) Last() Turn {
	if len(c.turns) == 0 {
		return nil
	}
	return c.turns[len(c.turns)-1]
}
