package main

import (
	"github.com/spf13/cobra"

	"github.com/vancomm/minefield/internal/app"
	"github.com/vancomm/minefield/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Without DATABASE_URL or POSTGRES_* variables
the server runs games only; accounts and records need a database and JWT keys.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log.WithField("development", config.Development()).Info("starting up")

	a, err := app.New(log, migrations)
	if err != nil {
		return err
	}
	if err := a.Start(cmd.Context()); err != nil {
		log.WithError(err).Error("server stopped")
		return err
	}
	log.Info("server stopped")
	return nil
}
