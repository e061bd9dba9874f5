package postgres

import (
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/joacominatel/pgbrowse/internal/database"
)

// SQL queries for PostgreSQL metadata introspection.
const (
	queryListTables = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY table_schema, table_name`

	queryGetColumns = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.character_maximum_length,
			c.ordinal_position,
			CASE WHEN pk.column_name IS NOT NULL THEN true ELSE false END AS is_primary
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT ku.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage ku
				ON tc.constraint_name = ku.constraint_name
				AND tc.table_schema = ku.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = $1
				AND tc.table_name = $2
		) pk ON c.column_name = pk.column_name
		WHERE c.table_schema = $1
		  AND c.table_name = $2
		ORDER BY c.ordinal_position`
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ident quotes a catalog name for interpolation. squirrel treats "?" as a
// placeholder anywhere in the statement, so literal ones are doubled.
func ident(parts ...string) string {
	return strings.ReplaceAll(pgx.Identifier(parts).Sanitize(), "?", "??")
}

// searchPredicate matches rows where any column's text form contains term.
func searchPredicate(columns []database.Column, term string) sq.Sqlizer {
	pattern := "%" + term + "%"
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.Expr(ident(c.Name)+"::text ILIKE ?", pattern))
	}
	return or
}

// countQuery builds the total-row query sharing the search predicate of the page query.
func countQuery(table database.Table, where sq.Sqlizer) sq.SelectBuilder {
	qb := psq.Select("COUNT(*)").From(ident(table.Schema, table.Name))
	if where != nil {
		qb = qb.Where(where)
	}
	return qb
}

// pageQuery builds the data query. orderBy must already be validated against the catalog.
func pageQuery(table database.Table, where sq.Sqlizer, orderBy, orderDir string, limit, offset int) sq.SelectBuilder {
	qb := psq.Select("*").From(ident(table.Schema, table.Name))
	if where != nil {
		qb = qb.Where(where)
	}
	if orderBy != "" {
		qb = qb.OrderBy(ident(orderBy) + " " + normalizeDir(orderDir))
	}
	return qb.Suffix("LIMIT ? OFFSET ?", limit, offset)
}

func normalizeDir(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// boundQuery appends the row cap to unbounded SELECT statements. The cap goes on
// its own line so a trailing "--" comment cannot swallow it.
func boundQuery(query string, limit int) string {
	normalized := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(normalized, "SELECT") || strings.Contains(normalized, "LIMIT") {
		return query
	}
	trimmed := strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
	return trimmed + "\nLIMIT " + strconv.Itoa(limit)
}
