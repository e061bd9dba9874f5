package results

import (
	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/export"
)

// FetchPageMsg asks for another page of the table on screen.
type FetchPageMsg struct {
	Table   database.Table
	Options database.FetchOptions
}

// ExportMsg asks for the grid on screen to be written to a file.
type ExportMsg struct {
	Format export.Format
}

// StatusNotifyMsg carries a message for the status bar.
type StatusNotifyMsg struct {
	Message string
}
