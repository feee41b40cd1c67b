package counting

import (
	"inventory-counter/core/realtime"
	"inventory-counter/core/storage"
	"inventory-counter/core/tasks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new counting feature.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, source *gorm.DB, importCfg ImportConfig, runner *tasks.Runner, hub *realtime.Hub, logger *zap.Logger) *Feature {
	store := NewStore(db)
	importer := NewImporter(store, client, bucket, source, importCfg, logger)
	svc := NewService(store, importer, runner, hub, client, bucket, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service exposes the feature's service for CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "counting"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
