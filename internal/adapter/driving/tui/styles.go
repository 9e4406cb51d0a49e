package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	authorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	navStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	draftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // amber

	blockedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)

var alertBase = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, false, false, true)

// alertStyle maps an alert category onto a colored notice block.
func alertStyle(category model.AlertCategory) lipgloss.Style {
	switch category {
	case model.AlertSuccess:
		return alertBase.BorderForeground(lipgloss.Color("42")).Foreground(lipgloss.Color("42"))
	case model.AlertError:
		return alertBase.BorderForeground(lipgloss.Color("196")).Foreground(lipgloss.Color("196"))
	default:
		return alertBase.BorderForeground(lipgloss.Color("33")).Foreground(lipgloss.Color("33"))
	}
}
