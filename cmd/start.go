package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-counter/core/config"
	"inventory-counter/core/database"
	"inventory-counter/core/loader"
	"inventory-counter/core/logger"
	"inventory-counter/core/middleware/auth"
	"inventory-counter/core/middleware/rayid"
	"inventory-counter/core/realtime"
	"inventory-counter/core/storage"
	"inventory-counter/core/tasks"

	"inventory-counter/feature/adjustment"
	"inventory-counter/feature/counting"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "inventory-counter/docs/swagger"
)

// @title Inventory Counter API
// @version 1.0
// @description API for running physical inventory counts.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory counter server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the application database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		store := counting.NewStore(db)
		if err := store.Migrate(); err != nil {
			logg.Fatal("Failed to migrate database", zap.Error(err))
		}

		// 3.5 Connect to the inventory source database (optional, sql import mode)
		var source *gorm.DB
		if cfg.Import.Mode == "sql" {
			if conn, err := database.Connect(cfg.Source); err != nil {
				logg.Warn("Source database connection failed, sql imports will error", zap.Error(err))
			} else {
				source = conn
				logg.Info("Connected to inventory source database")
			}
		}

		// 4. Initialize Storage
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		ensureBucket(client, cfg.Storage.Bucket, logg)

		// 5. Realtime hub + job runner. Job outcomes are fanned out to live
		// watchers of the session the job ran for.
		hub := realtime.NewHub(logg)
		runner := tasks.NewRunner(logg, func(ev tasks.Event) {
			if ev.Err == nil {
				return
			}
			hub.Broadcast(realtime.Event{
				Type:      realtime.EventJobFailed,
				SessionID: ev.Key,
				JobID:     ev.JobID,
				Message:   ev.Err.Error(),
			})
		})

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(counting.NewFeature(db, client, cfg.Storage.Bucket, source, cfg.Import, runner, hub, logg))
		mgr.Register(adjustment.NewFeature(store, cfg.Adjustment, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 2.6 Live session view (websocket upgrade happens before auth so
		// browser clients can connect without custom headers)
		app.Use("/live", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/live/:id", websocket.New(hub.Handler()))

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// ensureBucket creates the snapshot bucket when it does not exist yet. A
// storage outage at boot is logged, not fatal: scans and reconciles work
// without it.
func ensureBucket(client storage.Client, bucket string, logg *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		logg.Warn("Could not check snapshot bucket", zap.String("bucket", bucket), zap.Error(err))
		return
	}
	if exists {
		return
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		logg.Warn("Could not create snapshot bucket", zap.String("bucket", bucket), zap.Error(err))
		return
	}
	logg.Info("Created snapshot bucket", zap.String("bucket", bucket))
}

func init() {
	RootCmd.AddCommand(startCmd)
}
