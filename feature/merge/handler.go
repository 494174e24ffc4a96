package merge

import (
	"errors"

	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/runs"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for merges.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the merge routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/merge")
	group.Post("/", h.HandleMerge)
	group.Get("/runs", h.HandleListRuns)
}

// HandleMerge merges a child dataset into a master dataset.
// @Summary Merge Datasets
// @Description Merge a child CSV into a master CSV on their identifier columns and write a dated output file.
// @Tags merge
// @Accept json
// @Produce json
// @Param request body Request true "Master and child dataset configs"
// @Success 200 {object} Report "Merge report"
// @Failure 400 {object} map[string]string "Invalid dataset config"
// @Failure 409 {object} map[string]string "Output file is being written by another merge"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /merge [post]
func (h *Handler) HandleMerge(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	report, err := h.service.Merge(c.UserContext(), req)
	if err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			l.Error("Merge failed", zap.Error(err))
		} else {
			l.Warn("Merge rejected", zap.Int("status", status), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleListRuns lists recent merges from the run ledger.
// @Summary List Merge Runs
// @Description List the most recent merges, newest first.
// @Tags merge
// @Produce json
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} runs.Run "Recorded runs"
// @Failure 503 {object} map[string]string "Run ledger unavailable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /merge/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	list, err := h.service.ListRuns(c.UserContext(), c.QueryInt("limit", runs.DefaultLimit))
	if err != nil {
		if errors.Is(err, runs.ErrNoDatabase) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Listing merge runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(list)
}

func statusFor(err error) int {
	switch {
	case reconcile.IsConfigError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, reconcile.ErrOutputLocked):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
