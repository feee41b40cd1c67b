package cmd

import (
	"context"
	"fmt"

	"inventory-counter/core/config"
	"inventory-counter/core/database"
	"inventory-counter/core/logger"
	"inventory-counter/feature/counting"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cleanupCmd removes serial rows whose session no longer exists.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned serial number rows",
	Long: `Delete flagged serial rows that outlived their count session.
Serials flagged remove_add are kept across reconciles on purpose; this
removes only rows whose session was deleted entirely.`,
	RunE: runCleanup,
}

func init() {
	RootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	store := counting.NewStore(db)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	purged, err := store.PurgeSerials(context.Background())
	if err != nil {
		return err
	}

	l.Info("Cleanup finished", zap.Int64("purged", purged))
	return nil
}
