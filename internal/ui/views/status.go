package views

import (
	"fmt"

	"github.com/Cyclone1070/genfab/internal/ui/models"
)

// RenderStatus renders the analysis status line.
func RenderStatus(s models.State) string {
	switch s.Phase {
	case models.PhaseThinking:
		return StatusThinkingStyle.Render(fmt.Sprintf("%s %s", s.Spinner.View(), orText(s.PhaseMessage, "Analysing frame")))
	case models.PhaseExecuting:
		return StatusExecutingStyle.Render(fmt.Sprintf("%s %s", s.Spinner.View(), s.PhaseMessage))
	case models.PhaseDone:
		return StatusDoneStyle.Render("✔ " + orText(s.PhaseMessage, "Analysis complete"))
	case models.PhaseFailed:
		return StatusErrorStyle.Render("✘ " + orText(s.PhaseMessage, "Analysis failed"))
	default:
		if s.Notice != "" {
			if s.NoticeError {
				return StatusErrorStyle.Render(s.Notice)
			}
			return StatusDefaultStyle.Render(s.Notice)
		}
		return StatusDefaultStyle.Render("Ready")
	}
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
