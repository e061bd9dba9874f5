package results

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/export"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func (m Model) selectedRow() (database.Row, bool) {
	if m.row < 0 || m.row >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.row], true
}

func (m Model) copyCell() tea.Cmd {
	r, ok := m.selectedRow()
	if !ok || m.col >= len(r) || r[m.col].Value.IsNull() {
		return notify("Nothing to copy")
	}
	return copyText(r[m.col].Value.String(), "Copied "+m.columns[m.col])
}

func (m Model) copyRowJSON() tea.Cmd {
	r, ok := m.selectedRow()
	if !ok {
		return notify("No row to copy")
	}
	raw, err := r.MarshalJSON()
	if err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return copyText(string(raw), "Copied row as JSON")
}

func (m Model) copyRowCSV() tea.Cmd {
	r, ok := m.selectedRow()
	if !ok {
		return notify("No row to copy")
	}
	body, err := export.CSV(m.columns, []database.Row{r})
	if err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return copyText(strings.TrimRight(body, "\n"), "Copied row as CSV")
}

func (m Model) exportCmd(format export.Format) tea.Cmd {
	if m.source == SourceNone {
		return notify("Nothing to export")
	}
	return func() tea.Msg { return ExportMsg{Format: format} }
}

func copyText(text, done string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			return StatusNotifyMsg{Message: "Copy failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: done}
	}
}

func notify(message string) tea.Cmd {
	return func() tea.Msg { return StatusNotifyMsg{Message: message} }
}
