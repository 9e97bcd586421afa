package views

import (
	"strings"

	"github.com/Cyclone1070/genfab/internal/ui/models"
	"github.com/Cyclone1070/genfab/internal/ui/services"
	"github.com/charmbracelet/lipgloss"
)

const helpText = "a analyse · p pause · r resume · s stop · q quit"

// RenderRoot renders the complete dashboard.
func RenderRoot(s models.State, renderer services.MarkdownRenderer) string {
	sections := []string{RenderDevice(s)}

	if len(s.ToolLog) > 0 {
		sections = append(sections, DimStyle.Render(strings.Join(s.ToolLog, "\n")))
	}
	if s.Verdict != "" {
		sections = append(sections, RenderVerdict(s, renderer))
	}

	sections = append(sections, RenderStatus(s), HelpStyle.Render(helpText))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderVerdict renders the last analysis result as markdown.
func RenderVerdict(s models.State, renderer services.MarkdownRenderer) string {
	width := s.Width - 4
	if width <= 0 {
		width = 76
	}
	if s.VerdictFailed {
		return StatusErrorStyle.Render(s.Verdict)
	}
	return services.RenderMarkdown(services.FormatVerdict(s.Verdict), width, renderer)
}
