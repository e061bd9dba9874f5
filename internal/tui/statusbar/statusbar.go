// Package statusbar is the bottom line of the interactive browser.
package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/pgbrowse/internal/theme"
)

const hints = "tab: pane │ ctrl+e: run │ ?: help │ q: quit"

// Model is the status bar component.
type Model struct {
	width    int
	target   string
	database string
	pane     string
	message  string
	failed   bool
}

// New creates a new status bar model.
func New() Model {
	return Model{}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnection records the target and database in use. An empty database means disconnected.
func (m *Model) SetConnection(target, database string) {
	m.target = target
	m.database = database
}

// SetPane updates the displayed pane name.
func (m *Model) SetPane(pane string) {
	m.pane = pane
}

// SetMessage shows a message in place of the key hints. An empty message restores them.
func (m *Model) SetMessage(msg string) {
	m.message = msg
	m.failed = false
}

// SetError shows an error in place of the key hints.
func (m *Model) SetError(msg string) {
	m.message = msg
	m.failed = true
}

// Message returns the message on display.
func (m Model) Message() string {
	return m.message
}

// View renders the status bar.
func (m Model) View() string {
	var left string
	if m.database == "" {
		left = lipgloss.NewStyle().Foreground(theme.ColorError).Render("●") + " disconnected"
	} else {
		left = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●") + " " + m.database
		if m.target != "" && m.target != m.database {
			left += " (" + m.target + ")"
		}
	}
	if m.pane != "" {
		left += "  " + m.pane
	}

	right := hints
	if m.message != "" {
		right = m.message
		if m.failed {
			right = lipgloss.NewStyle().Foreground(theme.ColorError).Render(right)
		}
	}

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return theme.StyleStatusBar.Width(max(0, m.width)).Render(left + strings.Repeat(" ", gap) + right)
}
