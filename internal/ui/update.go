package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/ui/models"
	"github.com/Cyclone1070/genfab/internal/ui/services"
	"github.com/Cyclone1070/genfab/internal/ui/views"
	"github.com/Cyclone1070/genfab/internal/workflow"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	maxToolLog   = 6
	eventsBuffer = 32
)

// SpinnerFactory creates the spinner shown while an analysis runs.
type SpinnerFactory func() spinner.Model

// BubbleTeaModel implements tea.Model for the printer dashboard.
type BubbleTeaModel struct {
	state models.State

	ctx          context.Context
	printer      Printer
	analyzer     Analyzer
	renderer     services.MarkdownRenderer
	pollInterval time.Duration
}

// Internal messages
type (
	pollMsg   time.Time
	statusMsg struct {
		status device.Status
		err    error
	}
	infoMsg struct {
		info device.Info
		err  error
	}
	commandDoneMsg struct {
		name   string
		result device.CommandResult
		err    error
	}
	analysisEventMsg struct {
		event  workflow.Event
		events <-chan workflow.Event
	}
	analysisDoneMsg struct {
		result analysis.Result
	}
)

func newBubbleTeaModel(
	ctx context.Context,
	printer Printer,
	analyzer Analyzer,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	pollInterval time.Duration,
) BubbleTeaModel {
	return BubbleTeaModel{
		state: models.State{
			Progress: progress.New(progress.WithDefaultGradient()),
			Spinner:  spinnerFactory(),
		},
		ctx:          ctx,
		printer:      printer,
		analyzer:     analyzer,
		renderer:     renderer,
		pollInterval: pollInterval,
	}
}

// Init fetches identity and status immediately and starts polling.
func (m BubbleTeaModel) Init() tea.Cmd {
	return tea.Batch(
		fetchInfo(m.ctx, m.printer),
		fetchStatus(m.ctx, m.printer),
		poll(m.pollInterval),
	)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Progress.Width = max(10, min(msg.Width-8, 60))
		return m, nil

	case pollMsg:
		return m, tea.Batch(fetchStatus(m.ctx, m.printer), poll(m.pollInterval))

	case statusMsg:
		if msg.err != nil {
			m.state.StatusErr = msg.err.Error()
			return m, nil
		}
		m.state.Status = msg.status
		m.state.HasStatus = true
		m.state.StatusErr = ""
		m.state.UpdatedAt = time.Now()
		return m, nil

	case infoMsg:
		if msg.err == nil {
			m.state.Info = msg.info
		}
		return m, nil

	case commandDoneMsg:
		switch {
		case msg.err != nil:
			m.state.Notice = fmt.Sprintf("%s failed: %v", msg.name, msg.err)
			m.state.NoticeError = true
		default:
			m.state.Notice = msg.result.Message
			m.state.NoticeError = !msg.result.Succeeded
		}
		return m, fetchStatus(m.ctx, m.printer)

	case analysisEventMsg:
		// Buffered events can arrive after the run result; drop them then.
		if m.state.Analyzing {
			m.applyEvent(msg.event)
		}
		return m, listenForEvents(msg.events)

	case analysisDoneMsg:
		m.finishAnalysis(msg.result)
		return m, fetchStatus(m.ctx, m.printer)

	case spinner.TickMsg:
		if !m.state.Analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state, m.renderer)
}

func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "a":
		if m.state.Analyzing || m.analyzer == nil {
			return m, nil
		}
		m.state.Analyzing = true
		m.state.Phase = models.PhaseThinking
		m.state.PhaseMessage = ""
		m.state.ToolLog = nil
		m.state.Verdict = ""
		m.state.VerdictFailed = false

		events := make(chan workflow.Event, eventsBuffer)
		return m, tea.Batch(
			runAnalysis(m.ctx, m.analyzer, events),
			listenForEvents(events),
			m.state.Spinner.Tick,
		)

	case "p":
		return m, runCommand(m.ctx, "pause", m.printer.Pause)
	case "r":
		return m, runCommand(m.ctx, "resume", m.printer.Resume)
	case "s":
		return m, runCommand(m.ctx, "stop", m.printer.Stop)
	}
	return m, nil
}

func (m *BubbleTeaModel) applyEvent(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		m.state.Phase = models.PhaseThinking
		m.state.PhaseMessage = fmt.Sprintf("Analysing frame (turn %d)", e.Turn)
	case workflow.ToolStartEvent:
		m.state.Phase = models.PhaseExecuting
		m.state.PhaseMessage = services.FormatToolCall(e.ToolName, e.Args)
		m.appendToolLog("→ " + m.state.PhaseMessage)
	case workflow.ToolEndEvent:
		mark := "✔"
		if e.IsError {
			mark = "✘"
		}
		m.appendToolLog(fmt.Sprintf("%s %s", mark, e.ToolName))
	}
}

func (m *BubbleTeaModel) appendToolLog(line string) {
	m.state.ToolLog = append(m.state.ToolLog, line)
	if len(m.state.ToolLog) > maxToolLog {
		m.state.ToolLog = m.state.ToolLog[len(m.state.ToolLog)-maxToolLog:]
	}
}

func (m *BubbleTeaModel) finishAnalysis(result analysis.Result) {
	m.state.Analyzing = false
	switch r := result.(type) {
	case analysis.Success:
		m.state.Phase = models.PhaseDone
		m.state.PhaseMessage = fmt.Sprintf("Analysis complete in %d call(s)", r.Calls)
		m.state.Verdict = r.Text
		m.state.VerdictFailed = false
	case analysis.Failure:
		m.state.Phase = models.PhaseFailed
		m.state.PhaseMessage = r.Reason
		m.state.Verdict = "analysis failed: " + r.Reason
		m.state.VerdictFailed = true
	}
}

func fetchStatus(ctx context.Context, p Printer) tea.Cmd {
	return func() tea.Msg {
		st, err := p.Status(ctx)
		return statusMsg{status: st, err: err}
	}
}

func fetchInfo(ctx context.Context, p Printer) tea.Cmd {
	return func() tea.Msg {
		info, err := p.Info(ctx)
		return infoMsg{info: info, err: err}
	}
}

func runCommand(ctx context.Context, name string, fn func(context.Context) (device.CommandResult, error)) tea.Cmd {
	return func() tea.Msg {
		res, err := fn(ctx)
		return commandDoneMsg{name: name, result: res, err: err}
	}
}

// runAnalysis closes events once the run returns so the listener stops.
func runAnalysis(ctx context.Context, a Analyzer, events chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		res := a.Analyze(ctx, events)
		close(events)
		return analysisDoneMsg{result: res}
	}
}

func listenForEvents(events <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return analysisEventMsg{event: ev, events: events}
	}
}

func poll(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}
