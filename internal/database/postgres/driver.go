package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/export"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

// Opener opens a lazily connecting handle for a DSN.
type Opener func(dsn string) (*sql.DB, error)

// Option configures a Driver.
type Option func(*Driver)

// WithOpener replaces the function used to open the connection handle.
func WithOpener(open Opener) Option {
	return func(d *Driver) { d.open = open }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(log logger.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// WithClock sets the clock used for export banners.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// Driver implements database.Browser for PostgreSQL.
// It holds at most one connection and must not be shared between goroutines.
type Driver struct {
	dsn    string
	dbName string
	db     *sql.DB
	open   Opener
	log    logger.Logger
	now    func() time.Time
}

var _ database.Browser = (*Driver)(nil)

// New creates a PostgreSQL access layer for dsn. Nothing is dialed until first use.
func New(dsn string, opts ...Option) *Driver {
	d := &Driver{
		dsn:  dsn,
		open: OpenDB,
		log:  logger.Discard(),
		now:  time.Now,
	}
	if cfg, err := pgconn.ParseConfig(dsn); err == nil {
		d.dbName = cfg.Database
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OpenDB opens a database/sql handle on the pgx driver capped to a single connection.
func OpenDB(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Connect opens the handle if needed and checks it is alive.
// A broken connection is replaced by database/sql on the next use.
func (d *Driver) Connect(ctx context.Context) error {
	if d.db == nil {
		db, err := d.open(d.dsn)
		if err != nil {
			d.log.Error("Database connection failed", logger.Ctx{"err": err})
			return &database.ErrConnection{Cause: err}
		}
		d.db = db
	}

	if err := d.db.PingContext(ctx); err != nil {
		d.log.Error("Database connection failed", logger.Ctx{"err": err})
		return &database.ErrConnection{Cause: fmt.Errorf("ping: %w", err)}
	}
	return nil
}

// Close releases the connection. The next call reconnects.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// DatabaseName returns the database named in the DSN.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

// ListTables returns every table outside the system schemas.
func (d *Driver) ListTables(ctx context.Context) ([]database.Table, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, queryListTables)
	if err != nil {
		return nil, d.fail("Error fetching tables", fmt.Errorf("list tables: %w", err), nil)
	}
	defer rows.Close()

	tables := []database.Table{}
	for rows.Next() {
		var t database.Table
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, d.fail("Error fetching tables", fmt.Errorf("scan table: %w", err), nil)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, d.fail("Error fetching tables", fmt.Errorf("rows: %w", err), nil)
	}
	return tables, nil
}

// DescribeTable returns column metadata for a table in physical order.
func (d *Driver) DescribeTable(ctx context.Context, table database.Table) ([]database.Column, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	return d.columns(ctx, table)
}

func (d *Driver) columns(ctx context.Context, table database.Table) ([]database.Column, error) {
	fields := tableCtx(table)

	rows, err := d.db.QueryContext(ctx, queryGetColumns, table.Schema, table.Name)
	if err != nil {
		return nil, d.fail("Error fetching table structure", fmt.Errorf("get columns: %w", err), fields)
	}
	defer rows.Close()

	columns := []database.Column{}
	for rows.Next() {
		var (
			col       database.Column
			nullable  string
			defExpr   sql.NullString
			maxLength sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &defExpr, &maxLength, &col.OrdinalPos, &col.IsPrimary); err != nil {
			return nil, d.fail("Error fetching table structure", fmt.Errorf("scan column: %w", err), fields)
		}
		col.IsNullable = nullable == "YES"
		if defExpr.Valid {
			col.Default = &defExpr.String
		}
		if maxLength.Valid {
			col.MaxLength = &maxLength.Int64
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, d.fail("Error fetching table structure", fmt.Errorf("rows: %w", err), fields)
	}
	return columns, nil
}

// FetchRows returns one page of table rows and the total number of matching rows.
// Identifiers are only interpolated after they are matched against the catalog.
func (d *Driver) FetchRows(ctx context.Context, table database.Table, opts database.FetchOptions) (*database.Page, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	fields := tableCtx(table)

	columns, err := d.columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, d.fail("Error fetching table data", &database.ErrUnknownTable{Table: table}, fields)
	}
	if opts.OrderBy != "" && !hasColumn(columns, opts.OrderBy) {
		return nil, d.fail("Error fetching table data", &database.ErrUnknownColumn{Table: table, Column: opts.OrderBy}, fields)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = database.DefaultPageSize
	}
	offset := max(opts.Offset, 0)

	var where sq.Sqlizer
	if opts.Search != "" {
		where = searchPredicate(columns, opts.Search)
	}

	countSQL, countArgs, err := countQuery(table, where).ToSql()
	if err != nil {
		return nil, d.fail("Error fetching table data", fmt.Errorf("build count: %w", err), fields)
	}
	var total int64
	if err := d.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, d.fail("Error fetching table data", fmt.Errorf("count rows: %w", err), fields)
	}

	pageSQL, args, err := pageQuery(table, where, opts.OrderBy, opts.OrderDir, limit, offset).ToSql()
	if err != nil {
		return nil, d.fail("Error fetching table data", fmt.Errorf("build query: %w", err), fields)
	}
	rs, err := d.db.QueryContext(ctx, pageSQL, args...)
	if err != nil {
		return nil, d.fail("Error fetching table data", fmt.Errorf("select rows: %w", err), fields)
	}
	defer rs.Close()

	_, rows, err := scanRows(rs)
	if err != nil {
		return nil, d.fail("Error fetching table data", err, fields)
	}

	return &database.Page{
		Columns: columns,
		Rows:    rows,
		Total:   total,
	}, nil
}

// ExecuteQuery runs caller-supplied SQL without validation. The text may hold several
// statements; the rows of the first one are returned.
// Unbounded SELECT statements are capped at database.QueryRowLimit rows.
func (d *Driver) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	query = boundQuery(query, database.QueryRowLimit)

	// the simple protocol accepts scripts of several statements, which a prepared statement does not
	rs, err := d.db.QueryContext(ctx, query, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, d.queryFailed(query, err)
	}
	defer rs.Close()

	columns, rows, err := scanRows(rs)
	if err != nil {
		return nil, d.queryFailed(query, err)
	}

	return &database.QueryResult{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
		Duration: time.Since(start),
	}, nil
}

func (d *Driver) queryFailed(query string, err error) error {
	// keep the server diagnostic itself, not our wrapping
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		err = pgErr
	}
	d.log.Error("Error executing custom query", logger.Ctx{"err": err})
	return &database.ErrQuery{Query: query, Cause: err}
}

// ExportCSV renders the table as CSV.
func (d *Driver) ExportCSV(ctx context.Context, table database.Table) (string, error) {
	page, err := d.exportPage(ctx, table)
	if err != nil {
		return "", err
	}
	out, err := export.CSV(database.ColumnNames(page.Columns), page.Rows)
	if err != nil {
		return "", d.fail("Error exporting CSV", err, tableCtx(table))
	}
	return out, nil
}

// ExportJSON renders the table as an indented JSON array.
func (d *Driver) ExportJSON(ctx context.Context, table database.Table) (string, error) {
	page, err := d.exportPage(ctx, table)
	if err != nil {
		return "", err
	}
	out, err := export.JSON(page.Rows)
	if err != nil {
		return "", d.fail("Error exporting JSON", err, tableCtx(table))
	}
	return out, nil
}

// ExportSQL renders the table as INSERT statements.
func (d *Driver) ExportSQL(ctx context.Context, table database.Table) (string, error) {
	page, err := d.exportPage(ctx, table)
	if err != nil {
		return "", err
	}
	return export.SQL(table, database.ColumnNames(page.Columns), page.Rows, d.now()), nil
}

func (d *Driver) exportPage(ctx context.Context, table database.Table) (*database.Page, error) {
	return d.FetchRows(ctx, table, database.FetchOptions{Limit: database.ExportRowLimit})
}

func (d *Driver) fail(msg string, err error, fields logger.Ctx) error {
	ctx := logger.Ctx{"err": err}
	for k, v := range fields {
		ctx[k] = v
	}
	d.log.Error(msg, ctx)
	return err
}

func tableCtx(table database.Table) logger.Ctx {
	return logger.Ctx{"schema": table.Schema, "table": table.Name}
}

func hasColumn(columns []database.Column, name string) bool {
	for _, c := range columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
