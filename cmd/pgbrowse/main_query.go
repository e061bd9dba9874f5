package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/theme"
)

type cmdQuery struct {
	global *cmdGlobal

	flagFormat string
}

// Command generates the command definition.
func (c *cmdQuery) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "query <sql>|-"
	cmd.Short = "Run an ad-hoc SQL statement"
	cmd.Long = `Description:
  Run an ad-hoc SQL statement

  A SELECT without a LIMIT clause returns at most 1000 rows.
  Pass "-" to read the statement from standard input.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", formatTable, "Format (table|compact|csv|json)"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdQuery) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 1, -1)
	if exit {
		return err
	}

	query, err := readQuery(args, c.global.stdin)
	if err != nil {
		return err
	}
	if query == "" {
		return errors.New("Query cannot be empty")
	}

	b, err := c.global.open()
	if err != nil {
		return err
	}
	defer b.Close()

	result, err := b.ExecuteQuery(cmd.Context(), query)
	if err != nil {
		var qErr *database.ErrQuery
		if errors.As(err, &qErr) {
			return errors.New(qErr.Message())
		}
		var connErr *database.ErrConnection
		if errors.As(err, &connErr) {
			return errors.New(database.ConnectionFailedMessage)
		}
		return err
	}

	styles := theme.For(cmd.OutOrStdout())
	data := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		line := make([]string, len(row))
		for i, f := range row {
			if f.Value.IsNull() && c.flagFormat != formatCSV {
				line[i] = styles.Null.Render("NULL")
				continue
			}
			line[i] = f.Value.String()
		}
		data = append(data, line)
	}

	err = renderTable(cmd.OutOrStdout(), c.flagFormat, result.Columns, data, result.Rows)
	if err != nil {
		return err
	}

	if c.flagFormat == formatTable {
		summary := fmt.Sprintf("%d row(s) in %s", result.RowCount, result.Duration.Round(time.Microsecond))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), theme.For(cmd.ErrOrStderr()).Muted.Render(summary))
	}

	return nil
}

// readQuery joins the arguments into one statement, or reads it from r when the only argument is "-".
func readQuery(args []string, r io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}
