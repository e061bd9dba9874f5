// Package theme holds the terminal styles used by the command line output
// and the interactive browser.
package theme

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("63")
	ColorSuccess = lipgloss.Color("42")
	ColorError   = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("245")
	ColorBorder  = lipgloss.Color("238")
)

// Styles is a set of styles bound to one output stream.
type Styles struct {
	Title   lipgloss.Style
	Active  lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Null    lipgloss.Style
	Box     lipgloss.Style
}

// For returns styles for w. Colour is dropped when w is not a terminal.
func For(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)

	return Styles{
		Title:   r.NewStyle().Foreground(ColorPrimary).Bold(true),
		Active:  r.NewStyle().Foreground(ColorPrimary).Bold(true),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Error:   r.NewStyle().Foreground(ColorError),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Null:    r.NewStyle().Foreground(ColorMuted).Italic(true),
		Box: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
	}
}
