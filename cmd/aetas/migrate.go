package main

import (
	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  "Applies every pending up migration. With --down it reverts the given number of steps instead.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if rollbackSteps > 0 {
			if err := database.Rollback(cfg.Database, rollbackSteps); err != nil {
				return err
			}
			log.Infof("reverted %d migration(s)", rollbackSteps)
			return nil
		}
		return database.Migrate(cfg.Database)
	},
}

func init() {
	migrateCmd.Flags().IntVar(&rollbackSteps, "down", 0, "Number of migrations to revert")
	rootCmd.AddCommand(migrateCmd)
}
