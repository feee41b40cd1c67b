package adjustment

import (
	"inventory-counter/feature/counting"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	cfg     Config
	service *Service
	handler *Handler
}

// NewFeature creates a new adjustment feature.
func NewFeature(store *counting.Store, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(store, NewClient(cfg), cfg, logger)
	h := NewHandler(svc, logger)
	return &Feature{cfg: cfg, service: svc, handler: h}
}

// Service exposes the feature's service for CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "adjustment"
}

// IsEnabled reports whether an adjustment endpoint is configured.
func (f *Feature) IsEnabled() bool {
	return f.cfg.BaseURL != ""
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
