package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/export"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

type cmdExport struct {
	global *cmdGlobal

	flagSchema string
	flagFormat string
	flagOutput string
}

// Command generates the command definition.
func (c *cmdExport) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "export <table>"
	cmd.Short = "Export a table as CSV, JSON or SQL"
	cmd.Long = `Description:
  Export a table as CSV, JSON or SQL

  At most 10000 rows are exported. Without --output the export is
  written to <table>.<format> in the current directory; use "-" for
  standard output.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagSchema, "schema", "s", "public", "Schema of the table"+"``")
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", string(export.FormatCSV), "Format (csv|json|sql)"+"``")
	cmd.Flags().StringVarP(&c.flagOutput, "output", "o", "", "Output file, or - for standard output"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdExport) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 1, 1)
	if exit {
		return err
	}

	format, err := export.ParseFormat(c.flagFormat)
	if err != nil {
		return err
	}

	b, err := c.global.open()
	if err != nil {
		return err
	}
	defer b.Close()

	table := database.Table{Schema: c.flagSchema, Name: args[0]}

	var body string
	switch format {
	case export.FormatJSON:
		body, err = b.ExportJSON(cmd.Context(), table)
	case export.FormatSQL:
		body, err = b.ExportSQL(cmd.Context(), table)
	default:
		body, err = b.ExportCSV(cmd.Context(), table)
	}
	if err != nil {
		return err
	}

	if c.flagOutput == "-" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}

	path := c.flagOutput
	if path == "" {
		path = format.Filename(table.Name)
	}

	err = os.WriteFile(path, []byte(body), 0o644)
	if err != nil {
		return err
	}

	c.global.log.Info("Table exported", logger.Ctx{"table": table.Qualified(), "path": path})
	return nil
}
