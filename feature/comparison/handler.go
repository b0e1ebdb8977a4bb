package comparison

import (
	"errors"
	"time"

	"score-ledger/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes sweeps over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the comparison routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/comparison")
	group.Post("/", h.HandleSweep)
	group.Get("/last", h.HandleLast)
}

// HandleSweep runs a sweep.
//
// Query: after (days, RFC 3339, date or phrase), dry_run (bool), format (json|text).
func (h *Handler) HandleSweep(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	dryRun := c.QueryBool("dry_run", false)

	after, err := ParseAfter(c.Query("after"), h.service.engine.now(), h.service.engine.cfg.Window())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, shared, err := h.service.Run(c.UserContext(), after, dryRun)
	if errors.Is(err, ErrBusy) {
		l.Warn("Sweep rejected", zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Sweep failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrFetch) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	if c.Query("format") == "text" {
		return c.SendString(report.Text(time.Local))
	}
	return c.JSON(fiber.Map{
		"shared": shared,
		"report": report,
	})
}

// HandleLast returns the last completed report.
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	report, at, ok := h.service.Last(c.QueryBool("dry_run", false))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no sweep has completed yet"})
	}
	if c.Query("format") == "text" {
		return c.SendString(report.Text(time.Local))
	}
	return c.JSON(fiber.Map{
		"finished_at": at,
		"report":      report,
	})
}
