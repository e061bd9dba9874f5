// Package databasetest provides an in-memory database.Browser for tests.
package databasetest

import (
	"context"

	"github.com/joacominatel/pgbrowse/internal/database"
)

// Fake is a scripted database.Browser. Zero values mean success with empty results.
type Fake struct {
	Name string

	ConnectErr error

	Tables    []database.Table
	TablesErr error

	Columns    map[database.Table][]database.Column
	ColumnsErr error

	Page      *database.Page
	PageErr   error
	LastTable database.Table
	LastFetch database.FetchOptions

	Result    *database.QueryResult
	QueryErr  error
	LastQuery string

	CSV, JSON, SQL string
	ExportErr      error

	Closed bool
}

var _ database.Browser = (*Fake)(nil)

func (f *Fake) Connect(context.Context) error { return f.ConnectErr }

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

func (f *Fake) DatabaseName() string { return f.Name }

func (f *Fake) ListTables(context.Context) ([]database.Table, error) {
	if f.TablesErr != nil {
		return nil, f.TablesErr
	}
	return f.Tables, nil
}

func (f *Fake) DescribeTable(_ context.Context, table database.Table) ([]database.Column, error) {
	if f.ColumnsErr != nil {
		return nil, f.ColumnsErr
	}
	return f.Columns[table], nil
}

func (f *Fake) FetchRows(_ context.Context, table database.Table, opts database.FetchOptions) (*database.Page, error) {
	f.LastTable = table
	f.LastFetch = opts
	if f.PageErr != nil {
		return nil, f.PageErr
	}
	if f.Page == nil {
		return &database.Page{}, nil
	}
	return f.Page, nil
}

func (f *Fake) ExecuteQuery(_ context.Context, query string) (*database.QueryResult, error) {
	f.LastQuery = query
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	if f.Result == nil {
		return &database.QueryResult{Columns: []string{}, Rows: []database.Row{}}, nil
	}
	return f.Result, nil
}

func (f *Fake) ExportCSV(_ context.Context, table database.Table) (string, error) {
	f.LastTable = table
	return f.CSV, f.ExportErr
}

func (f *Fake) ExportJSON(_ context.Context, table database.Table) (string, error) {
	f.LastTable = table
	return f.JSON, f.ExportErr
}

func (f *Fake) ExportSQL(_ context.Context, table database.Table) (string, error) {
	f.LastTable = table
	return f.SQL, f.ExportErr
}
