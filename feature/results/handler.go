package results

import (
	"errors"
	"time"

	"score-ledger/core/logger"
	"score-ledger/feature/comparison"
	"score-ledger/feature/ledger"
	"score-ledger/feature/score"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for game results.
type Handler struct {
	service *Service
	window  time.Duration
}

// NewHandler creates a new HTTP handler. window is the default listing period.
func NewHandler(service *Service, window time.Duration) *Handler {
	return &Handler{service: service, window: window}
}

// RegisterRoutes registers the results routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/results")
	group.Post("/", h.HandleCreate)
	group.Post("/calculate", h.HandleCalculate)
	group.Get("/", h.HandleList)
	group.Get("/:ts", h.HandleGet)
	group.Delete("/:ts", h.HandleDelete)
	group.Post("/:ts/remarks", h.HandleRemarks)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotPosting), errors.Is(err, score.ErrUnknownRule):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrIncomplete), errors.Is(err, score.ErrEvaluation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Results request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func view(g *score.GameResult) fiber.Map {
	return fiber.Map{
		"result": g,
		"detail": g.ToText(score.TextDetail),
	}
}

// HandleCreate records a game from a posting text or explicit seats.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var entry Entry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	result, err := h.service.Record(c.UserContext(), entry)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view(result))
}

// HandleCalculate scores a game without recording it.
func (h *Handler) HandleCalculate(c *fiber.Ctx) error {
	var entry Entry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	result, err := h.service.Calculate(entry)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view(result))
}

// HandleList lists results. Query: after (see comparison.ParseAfter), source (prefix).
func (h *Handler) HandleList(c *fiber.Ctx) error {
	after, err := comparison.ParseAfter(c.Query("after"), h.service.now(), h.window)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	list, err := h.service.List(c.UserContext(), after, c.Query("source"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"after": after, "count": len(list), "results": list})
}

// HandleGet returns one result.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	result, err := h.service.Get(c.UserContext(), c.Params("ts"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view(result))
}

// HandleDelete removes a result and its remarks.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	removed, err := h.service.Delete(c.UserContext(), c.Params("ts"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": c.Params("ts"), "remarks": removed})
}

type remarksRequest struct {
	Text    string             `json:"text"`
	Remarks []score.RemarkPair `json:"remarks"`
}

// HandleRemarks attaches remarks to a recorded game.
func (h *Handler) HandleRemarks(c *fiber.Ctx) error {
	var req remarksRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	n, err := h.service.AddRemarks(c.UserContext(), c.Params("ts"), req.Text, req.Remarks)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"inserted": n})
}
