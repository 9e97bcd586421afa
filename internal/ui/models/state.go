// Package models holds the dashboard view state.
package models

import (
	"time"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
)

// Phases of an analysis run as shown in the status bar.
const (
	PhaseIdle      = ""
	PhaseThinking  = "thinking"
	PhaseExecuting = "executing"
	PhaseDone      = "done"
	PhaseFailed    = "failed"
)

// State is everything the views need to draw one frame.
type State struct {
	Width  int
	Height int

	Info      device.Info
	Status    device.Status
	HasStatus bool
	StatusErr string
	UpdatedAt time.Time

	Progress progress.Model
	Spinner  spinner.Model

	Analyzing     bool
	Phase         string
	PhaseMessage  string
	ToolLog       []string
	Verdict       string
	VerdictFailed bool

	// Notice is the result of the last control command.
	Notice      string
	NoticeError bool
}
