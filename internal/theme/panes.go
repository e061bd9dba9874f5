package theme

import "github.com/charmbracelet/lipgloss"

// ColorHighlight marks the cursor in the interactive browser.
var ColorHighlight = lipgloss.Color("229")

// Styles shared by the panes of the interactive browser. They render through
// the default renderer, which is the one bubbletea writes to.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleActiveBorder = StyleBorder.
				BorderForeground(ColorPrimary)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleNull    = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

// Pane returns the border style for a pane, highlighted when it has focus.
func Pane(focused bool) lipgloss.Style {
	if focused {
		return StyleActiveBorder
	}
	return StyleBorder
}
