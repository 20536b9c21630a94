package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used by the play screen.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Progress    lipgloss.Style
	Prompt      lipgloss.Style
	Option      lipgloss.Style
	OptionFocus lipgloss.Style
	Correct     lipgloss.Style
	Incorrect   lipgloss.Style
	Explanation lipgloss.Style
	Flash       lipgloss.Style
	Celebrate   lipgloss.Style
	Outcome     lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Subtitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Progress:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
		Prompt:      lipgloss.NewStyle().Bold(true).MarginTop(1).MarginBottom(1),
		Option:      lipgloss.NewStyle().PaddingLeft(2),
		OptionFocus: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("226")),
		Correct:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
		Incorrect:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Explanation: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250")),
		Flash:       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Celebrate:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")).Border(lipgloss.RoundedBorder()).Padding(0, 2),
		Outcome:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("135")).Padding(1, 2),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
