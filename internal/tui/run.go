package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"shellbeats/internal/app"
)

// Run drives the full-screen interface until the user quits.
func Run(a *app.App) error {
	program := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
