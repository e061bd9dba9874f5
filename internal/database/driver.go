package database

import "context"

// FetchOptions controls a paginated table read.
type FetchOptions struct {
	Limit    int
	Offset   int
	OrderBy  string
	OrderDir string
	Search   string
}

// Browser is the table access layer used by the web and CLI front ends.
// An instance owns a single connection and is not meant for concurrent use.
type Browser interface {
	// Connect establishes the connection if it is absent or broken.
	Connect(ctx context.Context) error

	// Close releases the connection.
	Close() error

	// ListTables returns every user table ordered by schema and name.
	ListTables(ctx context.Context) ([]Table, error)

	// DescribeTable returns the columns of a table in physical order.
	DescribeTable(ctx context.Context, table Table) ([]Column, error)

	// FetchRows returns one page of a table, optionally ordered and filtered.
	FetchRows(ctx context.Context, table Table, opts FetchOptions) (*Page, error)

	// ExecuteQuery runs caller-supplied SQL.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// ExportCSV renders up to ExportRowLimit rows as CSV.
	ExportCSV(ctx context.Context, table Table) (string, error)

	// ExportJSON renders up to ExportRowLimit rows as a JSON array.
	ExportJSON(ctx context.Context, table Table) (string, error)

	// ExportSQL renders up to ExportRowLimit rows as INSERT statements.
	ExportSQL(ctx context.Context, table Table) (string, error)

	// DatabaseName returns the name of the target database.
	DatabaseName() string
}
