package export

import (
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/joacominatel/pgbrowse/internal/database"
)

// SQL renders rows as INSERT statements preceded by a two-line banner.
// A table without rows yields the banner and a single "no data" comment.
func SQL(table database.Table, columns []string, rows []database.Row, generated time.Time) string {
	var b strings.Builder
	b.WriteString("-- Data export for table " + table.Qualified() + "\n")
	b.WriteString("-- Generated on " + generated.Format(time.RFC3339) + "\n")

	if len(rows) == 0 {
		b.WriteString("-- No data found in table " + table.Qualified() + "\n")
		return b.String()
	}
	b.WriteString("\n")

	target := pgx.Identifier{table.Schema, table.Name}.Sanitize()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	columnList := strings.Join(quoted, ", ")

	for _, row := range rows {
		values := make([]string, len(columns))
		for i, c := range columns {
			v, ok := row.Get(c)
			if !ok {
				v = database.Null()
			}
			values[i] = Literal(v)
		}
		b.WriteString("INSERT INTO " + target + " (" + columnList + ") VALUES (" + strings.Join(values, ", ") + ");\n")
	}
	return b.String()
}

// Literal renders a value as a SQL literal.
func Literal(v database.Value) string {
	switch v.Kind {
	case database.KindNull:
		return "NULL"
	case database.KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return quote(v.String())
		}
		return v.String()
	case database.KindNumeric:
		if v.Str == "NaN" || strings.HasSuffix(v.Str, "Infinity") {
			return quote(v.Str)
		}
		return v.Str
	case database.KindInt, database.KindBool:
		return v.String()
	default:
		return quote(v.String())
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
