package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/config"
	"github.com/joacominatel/pgbrowse/internal/logger"
	"github.com/joacominatel/pgbrowse/internal/theme"
)

type cmdTargets struct {
	global *cmdGlobal
}

// Command generates the command definition.
func (c *cmdTargets) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "targets"
	cmd.Short = "Manage connection targets"
	cmd.Long = `Description:
  Manage connection targets

  Without a sub-command the configured targets are listed. The default
  target is marked with "*".
`
	cmd.RunE = c.Run

	// add sub-command.
	addCmd := cmdTargetsAdd{global: c.global}
	cmd.AddCommand(addCmd.Command())

	// remove sub-command.
	removeCmd := cmdTargetsRemove{global: c.global}
	cmd.AddCommand(removeCmd.Command())

	return cmd
}

// Run runs the actual command logic.
func (c *cmdTargets) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	out := cmd.OutOrStdout()
	styles := theme.For(out)
	cfg := c.global.cfg

	if len(cfg.Targets) == 0 {
		_, _ = fmt.Fprintln(out, styles.Muted.Render("No targets configured. Add one with: pgbrowse targets add <name> <dsn>"))
		return nil
	}

	def, _ := cfg.DefaultTarget()
	lines := make([]string, 0, len(cfg.Targets)+1)
	lines = append(lines, styles.Title.Render("Targets"))
	for _, t := range cfg.Targets {
		marker := "  "
		name := t.Name
		if t.Name == def.Name {
			marker = "* "
			name = styles.Active.Render(name)
		}
		lines = append(lines, marker+name+"  "+styles.Muted.Render(t.DisplayString()))
	}

	_, _ = fmt.Fprintln(out, styles.Box.Render(strings.Join(lines, "\n")))
	return nil
}

type cmdTargetsAdd struct {
	global *cmdGlobal

	flagDefault   bool
	flagNoKeyring bool
}

// Command generates the command definition.
func (c *cmdTargetsAdd) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "add <name> <dsn>"
	cmd.Short = "Add a connection target"
	cmd.Long = `Description:
  Add a connection target

  The password in the connection string is moved to the system keyring
  unless --no-keyring is given.
`
	cmd.RunE = c.Run
	cmd.Flags().BoolVar(&c.flagDefault, "default", false, "Make this the default target")
	cmd.Flags().BoolVar(&c.flagNoKeyring, "no-keyring", false, "Keep the password in the configuration file")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdTargetsAdd) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 2, 2)
	if exit {
		return err
	}

	name := args[0]
	cfg := c.global.cfg
	if cfg.HasTarget(name) {
		return fmt.Errorf("Target %q already exists", name)
	}

	conn, err := config.ParseDSN(args[1])
	if err != nil {
		return err
	}
	conn.Name = name

	if conn.Password != "" && !c.flagNoKeyring {
		err = config.StorePassword(name, conn.Password)
		if err != nil {
			return err
		}
		conn.Password = ""
	}

	cfg.AddTarget(conn)
	if c.flagDefault {
		cfg.Preferences.DefaultTarget = name
	}

	err = config.Save(c.global.flagConfig, cfg)
	if err != nil {
		return err
	}

	styles := theme.For(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render(fmt.Sprintf("Target %s added (%s)", name, conn.DisplayString())))
	return nil
}

type cmdTargetsRemove struct {
	global *cmdGlobal
}

// Command generates the command definition.
func (c *cmdTargetsRemove) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "remove <name>"
	cmd.Aliases = []string{"rm"}
	cmd.Short = "Remove a connection target"
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdTargetsRemove) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 1, 1)
	if exit {
		return err
	}

	name := args[0]
	cfg := c.global.cfg
	if !cfg.RemoveTarget(name) {
		return fmt.Errorf("Target %q not found", name)
	}

	err = config.DeletePassword(name)
	if err != nil {
		c.global.log.Warn("Failed to remove password from keyring", logger.Ctx{"target": name, "err": err})
	}

	err = config.Save(c.global.flagConfig, cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme.For(cmd.OutOrStdout()).Success.Render("Target "+name+" removed"))
	return nil
}
