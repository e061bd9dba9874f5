package database

import (
	"bytes"
	"encoding/json"
	"time"
)

// Row caps applied by the access layer.
const (
	DefaultPageSize = 100
	QueryRowLimit   = 1000
	ExportRowLimit  = 10000
)

// Table identifies a queryable relation.
type Table struct {
	Schema string `json:"schema"`
	Name   string `json:"table"`
}

// Qualified returns the dotted "schema.table" form used in messages and banners.
func (t Table) Qualified() string {
	return t.Schema + "." + t.Name
}

// Column represents a table column with its metadata.
type Column struct {
	Name       string  `json:"column_name"`
	DataType   string  `json:"data_type"`
	IsNullable bool    `json:"is_nullable"`
	Default    *string `json:"column_default"`
	MaxLength  *int64  `json:"character_maximum_length"`
	OrdinalPos int     `json:"ordinal_position"`
	IsPrimary  bool    `json:"is_primary"`
}

// ColumnNames returns the names of columns in order.
func ColumnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Field is one column of a row.
type Field struct {
	Column string
	Value  Value
}

// Row is an ordered list of column values.
type Row []Field

// Get returns the value for a column and whether it was present.
func (r Row) Get(column string) (Value, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Strings returns the textual form of every value in column order.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Value.String()
	}
	return out
}

// MarshalJSON encodes the row as an object whose keys keep column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Page holds one page of a paginated table read.
type Page struct {
	Columns []Column
	Rows    []Row
	Total   int64
}

// QueryResult holds the result of an ad-hoc SQL query execution.
type QueryResult struct {
	Columns  []string
	Rows     []Row
	RowCount int
	Duration time.Duration
}
