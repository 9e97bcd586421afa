package ui

import (
	"context"
	"errors"
	"time"

	"github.com/Cyclone1070/genfab/internal/ui/services"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultPollInterval is how often the dashboard refreshes printer status.
const DefaultPollInterval = 2 * time.Second

// UI runs the printer dashboard as a Bubble Tea program.
type UI struct {
	program *tea.Program
}

// Options tunes the dashboard.
type Options struct {
	PollInterval   time.Duration
	Renderer       services.MarkdownRenderer
	SpinnerFactory SpinnerFactory
	ProgramOptions []tea.ProgramOption
}

// DefaultSpinner is the spinner used when Options leaves it unset.
func DefaultSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("213"))),
	)
}

// New creates the dashboard. analyzer may be nil, which disables the analyse key.
func New(ctx context.Context, printer Printer, analyzer Analyzer, opts Options) *UI {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Renderer == nil {
		opts.Renderer = services.NewGlamourRenderer()
	}
	if opts.SpinnerFactory == nil {
		opts.SpinnerFactory = DefaultSpinner
	}
	if opts.ProgramOptions == nil {
		opts.ProgramOptions = []tea.ProgramOption{tea.WithAltScreen()}
	}

	model := newBubbleTeaModel(ctx, printer, analyzer, opts.Renderer, opts.SpinnerFactory, opts.PollInterval)
	return &UI{program: tea.NewProgram(model, append(opts.ProgramOptions, tea.WithContext(ctx))...)}
}

// Start runs the program until the user quits or ctx is cancelled.
func (u *UI) Start() error {
	_, err := u.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
