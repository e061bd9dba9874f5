package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/database"
)

type cmdTables struct {
	global *cmdGlobal

	flagFormat string
}

// Command generates the command definition.
func (c *cmdTables) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "tables"
	cmd.Short = "List user tables"
	cmd.Long = `Description:
  List user tables

  System schemas (pg_catalog and information_schema) are left out.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", formatTable, "Format (table|compact|csv|json)"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdTables) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	b, err := c.global.open()
	if err != nil {
		return err
	}
	defer b.Close()

	tables, err := b.ListTables(cmd.Context())
	if err != nil {
		return err
	}

	data := make([][]string, 0, len(tables))
	for _, t := range tables {
		data = append(data, []string{t.Schema, t.Name})
	}

	return renderTable(cmd.OutOrStdout(), c.flagFormat, []string{"SCHEMA", "TABLE"}, data, tables)
}

type cmdDescribe struct {
	global *cmdGlobal

	flagSchema string
	flagFormat string
}

// Command generates the command definition.
func (c *cmdDescribe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "describe <table>"
	cmd.Short = "Show the columns of a table"
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagSchema, "schema", "s", "public", "Schema of the table"+"``")
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", formatTable, "Format (table|compact|csv|json)"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdDescribe) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 1, 1)
	if exit {
		return err
	}

	b, err := c.global.open()
	if err != nil {
		return err
	}
	defer b.Close()

	table := database.Table{Schema: c.flagSchema, Name: args[0]}
	columns, err := b.DescribeTable(cmd.Context(), table)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("Table %s not found", table.Qualified())
	}

	data := make([][]string, 0, len(columns))
	for _, col := range columns {
		nullable := "NO"
		if col.IsNullable {
			nullable = "YES"
		}
		def := ""
		if col.Default != nil {
			def = *col.Default
		}
		maxLen := ""
		if col.MaxLength != nil {
			maxLen = strconv.FormatInt(*col.MaxLength, 10)
		}
		key := ""
		if col.IsPrimary {
			key = "PK"
		}
		data = append(data, []string{strconv.Itoa(col.OrdinalPos), col.Name, col.DataType, nullable, def, maxLen, key})
	}

	header := []string{"#", "COLUMN", "TYPE", "NULLABLE", "DEFAULT", "MAX LENGTH", "KEY"}
	return renderTable(cmd.OutOrStdout(), c.flagFormat, header, data, columns)
}
