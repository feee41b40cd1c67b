package adjustment

import (
	"errors"

	"inventory-counter/core/logger"
	"inventory-counter/feature/counting"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for adjustment pushes.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the adjustment routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sessions/:id/adjustments", h.HandlePush)
}

// HandlePush pushes the session's confirmed differences to the inventory
// system.
// @Summary Push Adjustments
// @Description Create an inventory adjustment from the session's confirmed differences.
// @Tags adjustments
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} PushResult "Push result"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 502 {object} map[string]string "Adjustment API unreachable"
// @Router /sessions/{id}/adjustments [post]
func (h *Handler) HandlePush(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	result, err := h.service.Push(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Adjustment push failed", zap.Error(err))
		status := fiber.StatusBadGateway
		if errors.Is(err, counting.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.JSON(result)
}
