package playground

import (
	"errors"

	"reconciler/core/logger"
	"reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the playground.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the playground routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/reconcile")
	group.Post("/simulate", h.HandleSimulate)
	group.Post("/confidence", h.HandleConfidence)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, reconcile.ErrInvalidRule) {
		l.Warn(msg, zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleSimulate reconciles two record sets without persisting anything.
// @Summary Simulate Reconciliation
// @Description Matches every source record against the target records and returns matches, exceptions and summary.
// @Tags playground
// @Accept json
// @Produce json
// @Param request body SimulateRequest true "Rules and record sets"
// @Success 200 {object} reconcile.Result
// @Failure 400 {object} map[string]string "Invalid request or rules"
// @Router /reconcile/simulate [post]
func (h *Handler) HandleSimulate(c *fiber.Ctx) error {
	var req SimulateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body: " + err.Error()})
	}

	result, err := h.service.Simulate(c.Context(), req)
	if err != nil {
		return h.fail(c, "Simulation failed", err)
	}
	return c.JSON(result)
}

// HandleConfidence scores a single candidate pair.
// @Summary Score Candidate Pair
// @Description Returns the confidence breakdown and narrative for one source and one target record.
// @Tags playground
// @Accept json
// @Produce json
// @Param request body ConfidenceRequest true "Rules and candidate pair"
// @Success 200 {object} ConfidenceResponse
// @Failure 400 {object} map[string]string "Invalid request or rules"
// @Router /reconcile/confidence [post]
func (h *Handler) HandleConfidence(c *fiber.Ctx) error {
	var req ConfidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body: " + err.Error()})
	}

	resp, err := h.service.Confidence(req)
	if err != nil {
		return h.fail(c, "Confidence scoring failed", err)
	}
	return c.JSON(resp)
}
