package database

import "fmt"

// ConnectionFailedMessage is what callers of the ad-hoc query path see when no connection could be made.
const ConnectionFailedMessage = "Database connection failed"

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents an ad-hoc query execution error.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// Message returns the driver diagnostic exactly as the driver reported it.
func (e *ErrQuery) Message() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

// ErrUnknownTable is returned when the catalog has no columns for a relation.
type ErrUnknownTable struct {
	Table Table
}

func (e *ErrUnknownTable) Error() string {
	return fmt.Sprintf("unknown table %q", e.Table.Qualified())
}

// ErrUnknownColumn is returned when a caller-supplied column is not part of the table.
type ErrUnknownColumn struct {
	Table  Table
	Column string
}

func (e *ErrUnknownColumn) Error() string {
	return fmt.Sprintf("unknown column %q in %s", e.Column, e.Table.Qualified())
}
