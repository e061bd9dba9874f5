package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/joacominatel/pgbrowse/internal/database"
)

// CSV renders a header line of column names followed by one record per row.
// Nulls become empty fields.
func CSV(columns []string, rows []database.Row) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Strings()); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return b.String(), nil
}
