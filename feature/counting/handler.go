package counting

import (
	"errors"

	"inventory-counter/core/logger"
	"inventory-counter/core/tasks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for count sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the counting routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/snapshots", h.HandleListSnapshots)

	group := app.Group("/sessions")
	group.Post("/", h.HandleCreateSession)
	group.Get("/:id", h.HandleGetSession)
	group.Post("/:id/scan", h.HandleScan)
	group.Post("/:id/reconcile", h.HandleReconcile)
	group.Post("/:id/import", h.HandleImport)
	group.Post("/:id/submit", h.HandleSubmit)
	group.Patch("/:id/differences/:code", h.HandleConfirmDifference)
	group.Patch("/:id/serials", h.HandleSetSerial)
}

// HandleCreateSession creates a new count session.
// @Summary Create Count Session
// @Description Create an empty draft count session.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session settings"
// @Success 201 {object} map[string]any "Created session"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /sessions [post]
func (h *Handler) HandleCreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := h.service.CreateSession(c.Context(), req)
	if err != nil {
		return h.fail(c, "Session create failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"session": session,
	})
}

// HandleGetSession returns the full session aggregate.
// @Summary Get Count Session
// @Description Get a count session with items, differences and serials.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]any "Session"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /sessions/{id} [get]
func (h *Handler) HandleGetSession(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Session fetch failed", err)
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"session": session,
	})
}

// HandleScan records one counted increment.
// @Summary Record Scan
// @Description Add a counted quantity for an item code.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ScanRequest true "Scan"
// @Success 200 {object} map[string]any "Refreshed physical items"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /sessions/{id}/scan [post]
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	items, err := h.service.Scan(c.Context(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Scan failed", err)
	}

	return c.JSON(fiber.Map{
		"status":         "success",
		"physical_items": items,
	})
}

// HandleReconcile submits a reconcile job for the session.
// @Summary Reconcile Session
// @Description Rebuild the session's difference rows in the background.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} map[string]string "Job submitted"
// @Failure 409 {object} map[string]string "Job already running"
// @Router /sessions/{id}/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	jobID, err := h.service.EnqueueReconcile(c.Params("id"))
	if err != nil {
		return h.fail(c, "Reconcile submit failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "success",
		"job_id": jobID,
	})
}

// HandleImport submits a virtual-snapshot import job for the session.
// @Summary Import Virtual Snapshot
// @Description Replace the session's virtual items from the configured source.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} map[string]string "Job submitted"
// @Failure 409 {object} map[string]string "Job already running"
// @Router /sessions/{id}/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	jobID, err := h.service.EnqueueImport(c.Params("id"))
	if err != nil {
		return h.fail(c, "Import submit failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "success",
		"job_id": jobID,
	})
}

// HandleListSnapshots lists the snapshot objects available for import.
// @Summary List Snapshots
// @Description List the virtual-inventory snapshot objects in the bucket.
// @Tags snapshots
// @Produce json
// @Success 200 {object} map[string]any "Snapshot object names"
// @Failure 500 {object} map[string]string "Listing failed"
// @Router /snapshots [get]
func (h *Handler) HandleListSnapshots(c *fiber.Ctx) error {
	names, err := h.service.ListSnapshots(c.Context())
	if err != nil {
		return h.fail(c, "Snapshot listing failed", err)
	}
	return c.JSON(fiber.Map{
		"status":    "success",
		"snapshots": names,
	})
}

// HandleSubmit finalizes the session.
// @Summary Submit Session
// @Description Mark the session submitted once all differences are confirmed.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]any "Submitted session"
// @Failure 400 {object} map[string]string "Unconfirmed differences remain"
// @Router /sessions/{id}/submit [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	session, err := h.service.Submit(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Submit failed", err)
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"session": session,
	})
}

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// HandleConfirmDifference sets the confirmed flag on one difference row.
// @Summary Confirm Difference
// @Description Confirm or unconfirm a single difference row.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param code path string true "Item Code"
// @Param request body confirmRequest true "Confirmation"
// @Success 200 {object} map[string]any "Updated session"
// @Failure 404 {object} map[string]string "Row not found"
// @Router /sessions/{id}/differences/{code} [patch]
func (h *Handler) HandleConfirmDifference(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := h.service.ConfirmDifference(c.Context(), c.Params("id"), c.Params("code"), req.Confirmed)
	if err != nil {
		return h.fail(c, "Confirm failed", err)
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"session": session,
	})
}

// HandleSetSerial updates the to-do flag of one serial row.
// @Summary Flag Serial Number
// @Description Set the handling flag on a serial number row.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SetSerialRequest true "Serial flag"
// @Success 200 {object} map[string]any "Updated session"
// @Failure 404 {object} map[string]string "Serial not found"
// @Router /sessions/{id}/serials [patch]
func (h *Handler) HandleSetSerial(c *fiber.Ctx) error {
	var req SetSerialRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := h.service.SetSerialToDo(c.Context(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Serial update failed", err)
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"session": session,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": msg,
	})
}

// fail logs the error and maps it to an HTTP status without leaking
// internals to the client.
func (h *Handler) fail(c *fiber.Ctx, what string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Error(what, zap.Error(err))

	status := fiber.StatusInternalServerError
	message := what
	switch {
	case errors.Is(err, ErrInvalidArgument):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, tasks.ErrBusy), errors.Is(err, ErrConcurrency):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, ErrSourceUnavailable), errors.Is(err, ErrMapping):
		status = fiber.StatusBadGateway
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}
