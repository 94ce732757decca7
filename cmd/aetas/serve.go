package main

import (
	"os/signal"
	"syscall"

	"github.com/aetas/aetas/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.NewApplication(ctx, configPath)
		if err != nil {
			return err
		}
		return application.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
