package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joacominatel/pgbrowse/internal/database"
)

// JSON renders rows as an array of objects indented by two spaces.
// Object keys keep column order.
func JSON(rows []database.Row) (string, error) {
	if rows == nil {
		rows = []database.Row{}
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("marshal rows: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", fmt.Errorf("indent json: %w", err)
	}
	return out.String(), nil
}
