package inventory

import (
	"inventory-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventory synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/:collection", h.HandleTrigger)
}

// HandleTrigger runs a reconciliation pass for one collection.
// @Summary Trigger Reconciliation
// @Description Run a reconciliation pass for devices, interfaces, or all.
// @Tags sync
// @Accept json
// @Produce json
// @Param collection path string true "Collection name (devices, interfaces, all)"
// @Success 200 {array} inventory.PassStatus "Pass results"
// @Failure 400 {object} map[string]string "Unknown collection"
// @Failure 500 {object} map[string]string "Pass failed"
// @Router /sync/{collection} [post]
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	collection := c.Params("collection")
	l := logger.WithRayID(h.service.logger, c)

	var statuses []PassStatus
	var err error

	switch collection {
	case "devices":
		var st PassStatus
		st, err = h.service.SyncDevices(c.Context())
		statuses = []PassStatus{st}
	case "interfaces":
		var st PassStatus
		st, err = h.service.SyncInterfaces(c.Context())
		statuses = []PassStatus{st}
	case "all":
		statuses, err = h.service.SyncAll(c.Context())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown collection: " + collection,
		})
	}

	if err != nil {
		l.Error("reconciliation pass failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"passes": statuses,
		})
	}

	return c.JSON(statuses)
}

// HandleStatus returns the last recorded pass per collection.
// @Summary Sync Status
// @Description Get the outcome of the most recent pass per collection.
// @Tags sync
// @Produce json
// @Success 200 {array} inventory.PassStatus "Last pass per collection"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}
