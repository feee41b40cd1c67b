package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"inventory-counter/core/config"
	"inventory-counter/core/database"
	"inventory-counter/core/logger"
	"inventory-counter/core/storage"
	"inventory-counter/feature/counting"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	importSessionID string
	importUpload    string
)

// importCmd imports a virtual snapshot into a count session.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the virtual inventory snapshot into a session",
	Long: `Replace a session's virtual items from the configured source.

With --upload, the given local CSV file is first uploaded to the snapshot
bucket under the configured object name, then imported.

Examples:
  # Import from the configured source
  inventory-counter import --session CNT-2026-08

  # Upload a local CSV and import it
  inventory-counter import --session CNT-2026-08 --upload ./stock.csv
`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSessionID, "session", "", "Count session id (required)")
	importCmd.Flags().StringVar(&importUpload, "upload", "", "Local CSV file to upload before importing")
	_ = importCmd.MarkFlagRequired("session")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
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

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	if importUpload != "" {
		if err := uploadSnapshot(ctx, client, cfg.Storage.Bucket, cfg.Import.Object, importUpload); err != nil {
			return err
		}
		l.Info("Snapshot uploaded",
			zap.String("file", importUpload),
			zap.String("object", cfg.Import.Object))
	}

	var source *gorm.DB
	if cfg.Import.Mode == "sql" {
		source, err = database.Connect(cfg.Source)
		if err != nil {
			return fmt.Errorf("failed to connect to source database: %w", err)
		}
	}

	importer := counting.NewImporter(store, client, cfg.Storage.Bucket, source, cfg.Import, l)
	count, err := importer.Run(ctx, importSessionID)
	if err != nil {
		return err
	}

	l.Info("Import finished",
		zap.String("session_id", importSessionID),
		zap.Int("items", count))
	return nil
}

func uploadSnapshot(ctx context.Context, client storage.Client, bucket, object, path string) error {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	_, err = client.PutObject(ctx, bucket, object, file, stat.Size(),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	return nil
}
