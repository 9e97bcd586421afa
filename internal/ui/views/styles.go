package views

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	ValueStyle = lipgloss.NewStyle().Bold(true)
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	StatusDefaultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	StatusThinkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	StatusExecutingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var stateColors = map[string]lipgloss.Color{
	"Printing": lipgloss.Color("39"),
	"Paused":   lipgloss.Color("214"),
	"Finished": lipgloss.Color("42"),
	"Ready":    lipgloss.Color("252"),
}

func stateStyle(state string) lipgloss.Style {
	c, ok := stateColors[state]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
