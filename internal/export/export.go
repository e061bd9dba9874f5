// Package export renders table rows as CSV, JSON or SQL INSERT statements.
package export

import (
	"fmt"
	"strings"
)

// Format is an export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatSQL  Format = "sql"
)

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatSQL:
		return f, nil
	default:
		return "", fmt.Errorf("invalid export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatSQL:
		return "text/sql"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Filename returns the attachment name for a table export.
func (f Format) Filename(table string) string {
	return table + "." + f.Extension()
}
