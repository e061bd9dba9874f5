package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/app"
	"github.com/joacominatel/pgbrowse/internal/config"
	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/database/postgres"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

type cmdGlobal struct {
	flagConfig    string
	flagDSN       string
	flagTarget    string
	flagLogLevel  string
	flagLogFormat string

	cfg     *config.Config
	log     logger.Logger
	factory app.Factory
	stdin   io.Reader
}

func main() {
	app := newApp(&cmdGlobal{})

	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newApp(globalCmd *cmdGlobal) *cobra.Command {
	app := &cobra.Command{}
	app.Use = "pgbrowse"
	app.Short = "Browse PostgreSQL databases from the web or the terminal"
	app.Long = `Description:
  Browse PostgreSQL databases from the web or the terminal

  pgbrowse lists tables, shows their structure and rows with paging,
  sorting and search, runs ad-hoc queries and exports tables as CSV,
  JSON or SQL INSERT statements.
`
	app.SilenceUsage = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	// Global flags.
	app.PersistentFlags().StringVar(&globalCmd.flagConfig, "config", "", "Path to the configuration file"+"``")
	app.PersistentFlags().StringVar(&globalCmd.flagDSN, "dsn", "", "PostgreSQL connection string, overrides --target"+"``")
	app.PersistentFlags().StringVarP(&globalCmd.flagTarget, "target", "t", "", "Name of the configured target to use"+"``")
	app.PersistentFlags().StringVar(&globalCmd.flagLogLevel, "log-level", "", "Log level (debug|info|warn|error)"+"``")
	app.PersistentFlags().StringVar(&globalCmd.flagLogFormat, "log-format", "", "Log format (text|json)"+"``")
	app.PersistentPreRunE = globalCmd.PreRun

	// serve sub-command.
	serveCmd := cmdServe{global: globalCmd}
	app.AddCommand(serveCmd.Command())

	// tables sub-command.
	tablesCmd := cmdTables{global: globalCmd}
	app.AddCommand(tablesCmd.Command())

	// describe sub-command.
	describeCmd := cmdDescribe{global: globalCmd}
	app.AddCommand(describeCmd.Command())

	// query sub-command.
	queryCmd := cmdQuery{global: globalCmd}
	app.AddCommand(queryCmd.Command())

	// export sub-command.
	exportCmd := cmdExport{global: globalCmd}
	app.AddCommand(exportCmd.Command())

	// browse sub-command.
	browseCmd := cmdBrowse{global: globalCmd}
	app.AddCommand(browseCmd.Command())

	// targets sub-command.
	targetsCmd := cmdTargets{global: globalCmd}
	app.AddCommand(targetsCmd.Command())

	return app
}

// PreRun loads the configuration and sets up logging.
func (c *cmdGlobal) PreRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.flagLogLevel != "" {
		cfg.Log.Level = c.flagLogLevel
	}
	if c.flagLogFormat != "" {
		cfg.Log.Format = c.flagLogFormat
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.log = log

	if c.factory == nil {
		c.factory = func(dsn string) database.Browser {
			return postgres.New(dsn, postgres.WithLogger(c.log))
		}
	}
	if c.stdin == nil {
		c.stdin = cmd.InOrStdin()
	}
	return nil
}

func (c *cmdGlobal) service() *app.Service {
	return app.NewService(c.cfg, c.factory, c.log)
}

// open returns an access layer for --dsn, --target or the default target.
func (c *cmdGlobal) open() (database.Browser, error) {
	svc := c.service()
	if c.flagDSN != "" {
		return svc.OpenDSN(c.flagDSN), nil
	}
	return svc.Open(c.flagTarget)
}

// CheckArgs validates the number of arguments passed to the function and shows the help if incorrect.
func (c *cmdGlobal) CheckArgs(cmd *cobra.Command, args []string, minArgs int, maxArgs int) (bool, error) {
	if len(args) < minArgs || (maxArgs != -1 && len(args) > maxArgs) {
		_ = cmd.Help()

		if len(args) == 0 {
			return true, nil
		}

		return true, fmt.Errorf("Invalid number of arguments")
	}

	return false, nil
}
