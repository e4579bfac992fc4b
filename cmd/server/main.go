// minefield serves minesweeper games over HTTP and websockets.
//
// Usage:
//
//	minefield [serve]      - Start the HTTP server (default)
//	minefield migrate      - Apply database migrations and exit
//	minefield play         - Play a game in the terminal
//
// Configuration is read from the environment, see internal/config.
package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minefield/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

var log *logrus.Logger

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "minefield",
	Short: "Minesweeper game server",
	Long: `minefield hosts minesweeper sessions over HTTP and websockets and
keeps the best times of won games in postgres.

Examples:
  minefield serve
  minefield migrate
  minefield play --rows 9 --cols 9 --mines 10`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewLogging()
		if err != nil {
			return err
		}
		log, err = cfg.NewLogger(os.Stderr)
		return err
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(playCmd)
}
