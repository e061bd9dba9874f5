package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/logger"
	"github.com/joacominatel/pgbrowse/internal/tui"
)

type cmdBrowse struct {
	global *cmdGlobal

	flagLogFile   string
	flagExportDir string
}

// Command generates the command definition.
func (c *cmdBrowse) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "browse"
	cmd.Short = "Browse a database in the terminal"
	cmd.Long = `Description:
  Browse a database in the terminal

  Opens a full-screen browser with a table tree, a query editor and a
  results grid. With --dsn or --target it connects straight away,
  otherwise it offers the configured targets.

  The screen is shared with nothing else, so logs go to --log-file or
  are dropped.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVar(&c.flagLogFile, "log-file", "", "Write logs to this file"+"``")
	cmd.Flags().StringVar(&c.flagExportDir, "export-dir", "", "Directory receiving exports, defaults to the current one"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdBrowse) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	log, closeLog, err := c.openLog()
	if err != nil {
		return err
	}
	defer closeLog()
	c.global.log = log

	model := tui.NewModel(c.global.service(), tui.Options{
		Target:    c.global.flagTarget,
		DSN:       c.global.flagDSN,
		PageSize:  c.global.cfg.Server.PageSize,
		ExportDir: c.flagExportDir,
		Log:       log,
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if m, ok := final.(tui.Model); ok {
		_ = m.Close()
	}
	return err
}

// openLog returns a logger writing to --log-file, or one that drops everything.
func (c *cmdBrowse) openLog() (logger.Logger, func(), error) {
	if c.flagLogFile == "" {
		return logger.Discard(), func() {}, nil
	}

	f, err := os.OpenFile(c.flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Options{
		Level:  c.global.cfg.Log.Level,
		Format: c.global.cfg.Log.Format,
		Output: f,
	})
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return log, func() { _ = f.Close() }, nil
}
