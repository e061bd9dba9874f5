package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joacominatel/pgbrowse/internal/web"
)

type cmdServe struct {
	global *cmdGlobal

	flagListen string
}

// Command generates the command definition.
func (c *cmdServe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "serve"
	cmd.Short = "Start the web interface"
	cmd.Long = `Description:
  Start the web interface

  The server listens on the configured address (":5000" unless changed)
  until interrupted.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagListen, "listen", "l", "", "Address to listen on"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdServe) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	cfg := c.global.cfg
	listen := cfg.Server.Listen
	if c.flagListen != "" {
		listen = c.flagListen
	}

	srv, err := web.New(c.global.service(), web.Options{
		SessionSecret: cfg.Server.SessionSecret,
		PageSize:      cfg.Server.PageSize,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Logger:        c.global.log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, listen)
}
