//go:build integration

package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joacominatel/pgbrowse/internal/database"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func mustExec(t *testing.T, d *Driver, query string) {
	t.Helper()
	_, err := d.ExecuteQuery(context.Background(), query)
	require.NoError(t, err, query)
}

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	d := New(startPostgres(t))
	defer func() { _ = d.Close() }()

	mustExec(t, d, `CREATE TABLE people (
		id integer PRIMARY KEY,
		name text,
		score numeric(6,2),
		active boolean,
		seen_at timestamp,
		joined_at timestamptz,
		born date,
		ratio float8,
		weight real,
		avatar bytea,
		tags integer[]
	)`)
	mustExec(t, d, `CREATE TABLE empty_table (id integer)`)
	for i := 1; i <= 25; i++ {
		mustExec(t, d, fmt.Sprintf(`INSERT INTO people VALUES (
			%d, 'person %d', %d.50, %t,
			'2024-01-%02d 10:30:15.25', '2024-01-%02d 10:30:00+02', '1990-02-%02d',
			%d.125, 1.1, '\x%02xff', '{%d,%d}')`,
			i, i, i, i%2 == 0, i, i, i, i, i, i, i+1))
	}
	mustExec(t, d, `INSERT INTO people (id, name) VALUES (26, 'O''Brien')`)
	mustExec(t, d, `INSERT INTO people (id, name, ratio, weight) VALUES (27, 'special floats', 'NaN', '-Infinity')`)

	people := database.Table{Schema: "public", Name: "people"}

	t.Run("ListTables", func(t *testing.T) {
		tables, err := d.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []database.Table{
			{Schema: "public", Name: "empty_table"},
			{Schema: "public", Name: "people"},
		}, tables)
	})

	t.Run("DescribeTable", func(t *testing.T) {
		columns, err := d.DescribeTable(ctx, people)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"id", "name", "score", "active", "seen_at", "joined_at",
			"born", "ratio", "weight", "avatar", "tags",
		}, database.ColumnNames(columns))
		assert.True(t, columns[0].IsPrimary)
	})

	t.Run("FetchRows returns min(N, L) rows", func(t *testing.T) {
		for _, limit := range []int{5, 27, 100} {
			page, err := d.FetchRows(ctx, people, database.FetchOptions{Limit: limit})
			require.NoError(t, err)
			assert.Equal(t, int64(27), page.Total)
			assert.Len(t, page.Rows, min(27, limit))
		}
	})

	t.Run("FetchRows ordering and offset", func(t *testing.T) {
		page, err := d.FetchRows(ctx, people, database.FetchOptions{Limit: 3, Offset: 1, OrderBy: "id", OrderDir: "DESC"})
		require.NoError(t, err)
		require.Len(t, page.Rows, 3)
		v, _ := page.Rows[0].Get("id")
		assert.Equal(t, database.IntValue(26), v)
	})

	t.Run("FetchRows search matches case-insensitively", func(t *testing.T) {
		page, err := d.FetchRows(ctx, people, database.FetchOptions{Search: "BRIEN"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		for _, row := range page.Rows {
			found := false
			for _, f := range row {
				if strings.Contains(strings.ToLower(f.Value.String()), "brien") {
					found = true
				}
			}
			assert.True(t, found)
		}
	})

	t.Run("ExecuteQuery SELECT 1", func(t *testing.T) {
		result, err := d.ExecuteQuery(ctx, "SELECT 1")
		require.NoError(t, err)
		require.Equal(t, 1, result.RowCount)
		assert.Equal(t, database.IntValue(1), result.Rows[0][0].Value)
	})

	t.Run("ExecuteQuery caps unbounded selects", func(t *testing.T) {
		result, err := d.ExecuteQuery(ctx, "SELECT * FROM generate_series(1,5000)")
		require.NoError(t, err)
		assert.Equal(t, database.QueryRowLimit, result.RowCount)
	})

	t.Run("ExecuteQuery reports syntax errors", func(t *testing.T) {
		result, err := d.ExecuteQuery(ctx, "SELEKT * FROM x")
		assert.Nil(t, result)
		var qErr *database.ErrQuery
		require.ErrorAs(t, err, &qErr)
		assert.Contains(t, qErr.Message(), "syntax error")
	})

	t.Run("ExportSQL on empty table", func(t *testing.T) {
		out, err := d.ExportSQL(ctx, database.Table{Schema: "public", Name: "empty_table"})
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 3)
		assert.NotContains(t, out, "INSERT")
	})

	t.Run("FetchRows renders typed columns", func(t *testing.T) {
		page, err := d.FetchRows(ctx, people, database.FetchOptions{Limit: 1, OrderBy: "id"})
		require.NoError(t, err)
		require.Len(t, page.Rows, 1)
		row := page.Rows[0]

		want := map[string]string{
			"seen_at": "2024-01-01 10:30:15.25Z",
			"born":    "1990-02-01",
			"ratio":   "1.125",
			"weight":  "1.1",
			"avatar":  `\x01ff`,
		}
		for col, text := range want {
			v, ok := row.Get(col)
			require.True(t, ok, col)
			assert.Equal(t, text, v.String(), col)
		}
	})

	t.Run("ExecuteQuery runs multi-statement scripts", func(t *testing.T) {
		_, err := d.ExecuteQuery(ctx, "CREATE TEMP TABLE script_t (id int);\nINSERT INTO script_t VALUES (1);\nINSERT INTO script_t VALUES (2);\n")
		require.NoError(t, err)

		result, err := d.ExecuteQuery(ctx, "SELECT count(*) AS n FROM script_t")
		require.NoError(t, err)
		require.Equal(t, 1, result.RowCount)
		assert.Equal(t, database.IntValue(2), result.Rows[0][0].Value)
	})

	t.Run("ExportSQL round trip", func(t *testing.T) {
		out, err := d.ExportSQL(ctx, people)
		require.NoError(t, err)
		assert.Contains(t, out, "'O''Brien'")
		assert.Contains(t, out, "'NaN'")
		assert.Contains(t, out, "'-Infinity'")

		before, err := d.ExportCSV(ctx, people)
		require.NoError(t, err)

		mustExec(t, d, "TRUNCATE people")
		mustExec(t, d, out)

		after, err := d.ExportCSV(ctx, people)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}
