package postgres

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/joacominatel/pgbrowse/internal/database"
)

// toValue maps a value produced by the pgx stdlib driver onto the closed value set.
// typeName is the upper-case PostgreSQL type name reported for the column, if any.
func toValue(v any, typeName string) database.Value {
	switch x := v.(type) {
	case nil:
		return database.Null()
	case int64:
		return database.IntValue(x)
	case int32:
		return database.IntValue(int64(x))
	case int:
		return database.IntValue(int64(x))
	case float64:
		if typeName == "FLOAT4" {
			return database.Float32Value(float32(x))
		}
		return database.FloatValue(x)
	case float32:
		return database.Float32Value(x)
	case bool:
		return database.BoolValue(x)
	case time.Time:
		if typeName == "DATE" {
			return database.DateValue(x)
		}
		return database.TimestampValue(x)
	case string:
		return textValue(x, typeName)
	case []byte:
		if typeName == "BYTEA" {
			return database.TextValue(`\x` + hex.EncodeToString(x))
		}
		return textValue(string(x), typeName)
	default:
		return database.TextValue(fmt.Sprint(x))
	}
}

func textValue(s, typeName string) database.Value {
	switch {
	case typeName == "NUMERIC":
		return database.NumericValue(s)
	case typeName == "" || isCharacterType(typeName):
		return database.StringValue(s)
	default:
		return database.TextValue(s)
	}
}

func isCharacterType(typeName string) bool {
	switch typeName {
	case "TEXT", "VARCHAR", "BPCHAR", "CHAR", "NAME", "CITEXT", "UUID":
		return true
	}
	return !strings.HasPrefix(typeName, "_") && strings.HasSuffix(typeName, "CHAR")
}

// scanRows reads every row of rs into ordered rows.
func scanRows(rs *sql.Rows) ([]string, []database.Row, error) {
	columns, err := rs.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}

	typeNames := make([]string, len(columns))
	if types, err := rs.ColumnTypes(); err == nil {
		for i, ct := range types {
			if i < len(typeNames) {
				typeNames[i] = strings.ToUpper(ct.DatabaseTypeName())
			}
		}
	}

	rows := []database.Row{}
	for rs.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}

		row := make(database.Row, len(columns))
		for i, name := range columns {
			row[i] = database.Field{Column: name, Value: toValue(raw[i], typeNames[i])}
		}
		rows = append(rows, row)
	}

	if err := rs.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows: %w", err)
	}
	return columns, rows, nil
}
