package cmd

import (
	"context"
	"fmt"

	"inventory-counter/core/config"
	"inventory-counter/core/database"
	"inventory-counter/core/logger"
	"inventory-counter/core/realtime"
	"inventory-counter/feature/counting"
	"inventory-counter/feature/counting/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileSessionID string

// reconcileCmd reconciles one count session from the command line.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a count session",
	Long: `Rebuild the difference rows of a count session from its physical and
virtual items. Confirmed flags and flagged serial numbers recorded against
surviving rows are preserved.

Examples:
  # Reconcile a session
  inventory-counter reconcile --session CNT-2026-08
`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileSessionID, "session", "", "Count session id (required)")
	_ = reconcileCmd.MarkFlagRequired("session")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	l.Info("Reconciling session", zap.String("session_id", reconcileSessionID))

	svc := counting.NewService(store, nil, nil, realtime.NewHub(l), nil, "", l)
	if err := svc.Reconcile(ctx, reconcileSessionID); err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	session, err := store.Load(ctx, reconcileSessionID)
	if err != nil {
		return err
	}
	printReconcileReport(l, session)
	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, session *models.CountSession) {
	confirmed := 0
	missingVirtual, missingPhysical, mismatches := 0, 0, 0
	for _, d := range session.DifferenceItems {
		if d.Confirmed {
			confirmed++
		}
		switch d.Reason {
		case models.ReasonMissingInVirtual:
			missingVirtual++
		case models.ReasonMissingInPhysical:
			missingPhysical++
		case models.ReasonQuantityMismatch:
			mismatches++
		}
	}

	l.Info("Reconciliation report",
		zap.String("session_id", session.ID),
		zap.Int("physical_items", len(session.PhysicalItems)),
		zap.Int("virtual_items", len(session.VirtualItems)),
		zap.Int("differences", len(session.DifferenceItems)),
		zap.Int("quantity_mismatches", mismatches),
		zap.Int("missing_in_virtual", missingVirtual),
		zap.Int("missing_in_physical", missingPhysical),
		zap.Int("confirmed", confirmed),
		zap.Int("serials", len(session.SerialNumbers)),
	)
}
