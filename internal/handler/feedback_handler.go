package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/service"
)

// FeedbackHandler handles feedback submission and aggregate stats.
type FeedbackHandler struct {
	svc *service.RecommendService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(svc *service.RecommendService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// Register sets up feedback routes.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("/feedback", h.Submit)
	router.Get("/feedback/stats", h.Stats)
}

// Submit appends one user judgment to the ledger.
func (h *FeedbackHandler) Submit(c fiber.Ctx) error {
	var body struct {
		Query     string `json:"query"`
		BookID    string `json:"book_id"`
		Title     string `json:"title"`
		Authors   string `json:"authors"`
		Feedback  string `json:"feedback"`
		SessionID string `json:"session_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	err := h.svc.RecordFeedback(domain.FeedbackEvent{
		Query:       body.Query,
		BookID:      body.BookID,
		BookTitle:   body.Title,
		BookAuthors: body.Authors,
		Feedback:    body.Feedback,
		SessionID:   body.SessionID,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Stats aggregates the full feedback ledger.
func (h *FeedbackHandler) Stats(c fiber.Ctx) error {
	stats, err := h.svc.FeedbackStats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}
