package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/genfab/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderDevice renders the printer identity, temperatures and job progress.
func RenderDevice(s models.State) string {
	title := TitleStyle.Render(orDash(s.Info.Name))
	if s.Info.Model != "" {
		title += DimStyle.Render(fmt.Sprintf("  %s · fw %s", s.Info.Model, orDash(s.Info.Firmware)))
	}

	if !s.HasStatus {
		body := "Waiting for printer status..."
		if s.StatusErr != "" {
			body = StatusErrorStyle.Render(s.StatusErr)
		}
		return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
	}

	st := s.Status
	rows := []string{
		row("State", stateStyle(string(st.State)).Render(string(st.State))),
		row("Nozzle", temp(st.TempNozzle, st.TargetNozzle)),
		row("Bed", temp(st.TempBed, st.TargetBed)),
		row("Chamber", temp(st.TempChamber, st.TargetChamber)),
		row("Fan", fmt.Sprintf("%d%%", st.FanSpeed)),
		row("Elapsed", FormatDuration(st.PrintTime)),
		row("Remaining", FormatDuration(st.TimeRemaining)),
	}

	bar := s.Progress.ViewAs(float64(st.Progress) / 100)

	lines := []string{title, "", strings.Join(rows, "\n"), "", bar}
	if s.StatusErr != "" {
		lines = append(lines, StatusErrorStyle.Render("last poll failed: "+s.StatusErr))
	}
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

func temp(cur, target float64) string {
	return fmt.Sprintf("%.1f / %.0f°C", cur, target)
}

// FormatDuration renders seconds as h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
