package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/ui/models"
	"github.com/Cyclone1070/genfab/internal/workflow"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockMarkdownRenderer struct {
	RenderFunc func(string, int) (string, error)
}

func (m *MockMarkdownRenderer) Render(content string, width int) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(content, width)
	}
	return content, nil
}

type MockPrinter struct {
	InfoFunc   func(ctx context.Context) (device.Info, error)
	StatusFunc func(ctx context.Context) (device.Status, error)
	PauseFunc  func(ctx context.Context) (device.CommandResult, error)
	ResumeFunc func(ctx context.Context) (device.CommandResult, error)
	StopFunc   func(ctx context.Context) (device.CommandResult, error)
}

func (m *MockPrinter) Info(ctx context.Context) (device.Info, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return device.Info{Name: "Test Printer"}, nil
}

func (m *MockPrinter) Status(ctx context.Context) (device.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return device.Status{State: device.StatePrinting, Progress: 50}, nil
}

func (m *MockPrinter) Pause(ctx context.Context) (device.CommandResult, error) {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx)
	}
	return device.CommandResult{Succeeded: true, Message: "Print paused"}, nil
}

func (m *MockPrinter) Resume(ctx context.Context) (device.CommandResult, error) {
	if m.ResumeFunc != nil {
		return m.ResumeFunc(ctx)
	}
	return device.CommandResult{Succeeded: true, Message: "Print resumed"}, nil
}

func (m *MockPrinter) Stop(ctx context.Context) (device.CommandResult, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx)
	}
	return device.CommandResult{Succeeded: true, Message: "Print stopped"}, nil
}

type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, events chan<- workflow.Event) analysis.Result
}

func (m *MockAnalyzer) Analyze(ctx context.Context, events chan<- workflow.Event) analysis.Result {
	return m.AnalyzeFunc(ctx, events)
}

func newTestModel(p Printer, a Analyzer) BubbleTeaModel {
	return newBubbleTeaModel(context.Background(), p, a, &MockMarkdownRenderer{}, func() spinner.Model { return spinner.New() }, time.Hour)
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m BubbleTeaModel, msg tea.Msg) (BubbleTeaModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(BubbleTeaModel)
	require.True(t, ok)
	return bm, cmd
}

func TestUpdate_StatusMessages(t *testing.T) {
	m := newTestModel(&MockPrinter{}, nil)

	m, _ = update(t, m, statusMsg{status: device.Status{State: device.StatePaused, Progress: 70}})
	assert.True(t, m.state.HasStatus)
	assert.Equal(t, device.StatePaused, m.state.Status.State)

	m, _ = update(t, m, statusMsg{err: errors.New("timeout")})
	assert.Equal(t, "timeout", m.state.StatusErr)
	assert.Equal(t, 70, m.state.Status.Progress, "last good status is kept")

	m, _ = update(t, m, infoMsg{info: device.Info{Name: "Core One"}})
	assert.Equal(t, "Core One", m.state.Info.Name)
}

func TestUpdate_FetchStatusCommand(t *testing.T) {
	p := &MockPrinter{StatusFunc: func(ctx context.Context) (device.Status, error) {
		return device.Status{State: device.StateFinished, Progress: 100}, nil
	}}

	msg := fetchStatus(context.Background(), p)()
	st, ok := msg.(statusMsg)
	require.True(t, ok)
	assert.Equal(t, device.StateFinished, st.status.State)
}

func TestUpdate_ControlKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want string
	}{
		{'p', "pause"},
		{'r', "resume"},
		{'s', "stop"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var called string
			p := &MockPrinter{
				PauseFunc: func(context.Context) (device.CommandResult, error) {
					called = "pause"
					return device.CommandResult{Succeeded: true, Message: "ok"}, nil
				},
				ResumeFunc: func(context.Context) (device.CommandResult, error) {
					called = "resume"
					return device.CommandResult{Succeeded: false, Message: "Printer is not paused"}, nil
				},
				StopFunc: func(context.Context) (device.CommandResult, error) {
					called = "stop"
					return device.CommandResult{}, errors.New("offline")
				},
			}
			m := newTestModel(p, nil)

			m, cmd := update(t, m, key(tt.key))
			require.NotNil(t, cmd)
			done, ok := cmd().(commandDoneMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, called)

			m, _ = update(t, m, done)
			switch tt.want {
			case "pause":
				assert.False(t, m.state.NoticeError)
			case "resume":
				assert.True(t, m.state.NoticeError)
				assert.Equal(t, "Printer is not paused", m.state.Notice)
			case "stop":
				assert.True(t, m.state.NoticeError)
				assert.Contains(t, m.state.Notice, "offline")
			}
		})
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(&MockPrinter{}, nil)
	_, cmd := update(t, m, key('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUpdate_AnalysisFlow(t *testing.T) {
	a := &MockAnalyzer{AnalyzeFunc: func(ctx context.Context, events chan<- workflow.Event) analysis.Result {
		workflow.Emit(events, workflow.ThinkingEvent{Turn: 1})
		workflow.Emit(events, workflow.ToolStartEvent{ToolName: "get_device_status"})
		workflow.Emit(events, workflow.ToolEndEvent{ToolName: "get_device_status"})
		return analysis.Success{Text: `{"status":"ok","recommendation":"continue"}`, Calls: 2}
	}}
	m := newTestModel(&MockPrinter{}, a)

	m, cmd := update(t, m, key('a'))
	require.NotNil(t, cmd)
	assert.True(t, m.state.Analyzing)
	assert.Equal(t, models.PhaseThinking, m.state.Phase)

	// A second press while running is ignored.
	_, again := update(t, m, key('a'))
	assert.Nil(t, again)

	events := make(chan workflow.Event, eventsBuffer)
	done := runAnalysis(context.Background(), a, events)().(analysisDoneMsg)

	listen := listenForEvents(events)
	for {
		msg := listen()
		if msg == nil {
			break
		}
		ev := msg.(analysisEventMsg)
		m, _ = update(t, m, ev)
		listen = listenForEvents(ev.events)
	}
	assert.Equal(t, []string{"→ get_device_status", "✔ get_device_status"}, m.state.ToolLog)

	m, _ = update(t, m, done)
	assert.False(t, m.state.Analyzing)
	assert.Equal(t, models.PhaseDone, m.state.Phase)
	assert.Contains(t, m.state.PhaseMessage, "2 call")
	assert.Contains(t, m.View(), "OK")
}

func TestUpdate_AnalysisFailure(t *testing.T) {
	m := newTestModel(&MockPrinter{}, &MockAnalyzer{})
	m.state.Analyzing = true

	m, _ = update(t, m, analysisDoneMsg{result: analysis.Failure{Reason: analysis.ReasonTooManyToolTurns, Calls: 5}})
	assert.Equal(t, models.PhaseFailed, m.state.Phase)
	assert.True(t, m.state.VerdictFailed)
	assert.Contains(t, m.View(), "Too many tool turns")

	// Late events after the result do not reopen the run.
	m, _ = update(t, m, analysisEventMsg{event: workflow.ThinkingEvent{Turn: 5}, events: make(chan workflow.Event)})
	assert.Equal(t, models.PhaseFailed, m.state.Phase)
}

func TestUpdate_AnalyseWithoutAnalyzer(t *testing.T) {
	m := newTestModel(&MockPrinter{}, nil)
	m, cmd := update(t, m, key('a'))
	assert.Nil(t, cmd)
	assert.False(t, m.state.Analyzing)
}

func TestUpdate_ToolLogIsBounded(t *testing.T) {
	m := newTestModel(&MockPrinter{}, nil)
	m.state.Analyzing = true
	for i := 0; i < maxToolLog+3; i++ {
		m.applyEvent(workflow.ToolEndEvent{ToolName: "get_device_status"})
	}
	assert.Len(t, m.state.ToolLog, maxToolLog)
}
