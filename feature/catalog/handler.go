package catalog

import (
	"errors"

	"cardstock/core/logger"
	"cardstock/feature/catalog/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for catalog synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Post("/sync", h.HandleTriggerSync)
	group.Get("/runs", h.HandleListRuns)
	group.Get("/runs/:id", h.HandleGetRun)
	group.Post("/runs/:id/cancel", h.HandleCancelRun)
}

type triggerSyncRequest struct {
	Games []string `json:"games"`
	Force bool     `json:"force"`
}

// HandleTriggerSync starts a catalog sync run.
// @Summary Trigger Catalog Sync
// @Description Start a background sync run against the provider. Returns the active run when one is already in flight.
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body triggerSyncRequest false "Run options"
// @Success 202 {object} models.SyncRun "Created run"
// @Failure 409 {object} models.SyncRun "A run is already in flight"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/sync [post]
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req triggerSyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	run, created, err := h.service.TriggerSync(c.Context(), req.Games, req.Force)
	if err != nil {
		l.Error("Failed to trigger sync", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The already-active run is returned with 409 so callers can tell a fresh
	// trigger from a duplicate one.
	status := fiber.StatusConflict
	if created {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(run)
}

// HandleListRuns lists recent sync runs.
// @Summary List Sync Runs
// @Description List the most recent sync runs, newest first.
// @Tags catalog
// @Produce json
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} models.SyncRun "Runs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Runs(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		l.Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(runs)
}

// HandleGetRun returns one sync run.
// @Summary Get Sync Run
// @Description Get one sync run by id.
// @Tags catalog
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.SyncRun "Run"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	run, err := h.service.Run(c.Context(), c.Params("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
	}
	if err != nil {
		l.Error("Failed to load run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(run)
}

// HandleCancelRun cancels a queued or running sync run.
// @Summary Cancel Sync Run
// @Description Request cancellation; the run settles at the next page boundary.
// @Tags catalog
// @Produce json
// @Param id path string true "Run ID"
// @Success 202 {object} map[string]string "Cancellation requested"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Run not cancellable"
// @Router /catalog/runs/{id}/cancel [post]
func (h *Handler) HandleCancelRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	err := h.service.CancelRun(c.Context(), c.Params("id"))
	switch {
	case err == nil:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "cancelling",
		})
	case errors.Is(err, store.ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
	case errors.Is(err, ErrRunNotCancellable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		l.Error("Failed to cancel run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
