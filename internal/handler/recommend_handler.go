package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mattear-com/deepshelf/internal/port"
	"github.com/mattear-com/deepshelf/internal/service"
)

// RecommendHandler handles recommendation and explanation endpoints.
type RecommendHandler struct {
	svc           *service.RecommendService
	defaultTopK   int
	minSimilarity float64
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(svc *service.RecommendService, defaultTopK int, minSimilarity float64) *RecommendHandler {
	return &RecommendHandler{svc: svc, defaultTopK: defaultTopK, minSimilarity: minSimilarity}
}

// Register sets up recommendation routes.
func (h *RecommendHandler) Register(router fiber.Router) {
	router.Post("/recommend", h.Recommend)
	router.Post("/similar", h.Similar)
	router.Post("/personalized", h.Personalized)
	router.Post("/explain", h.Explain)
}

func (h *RecommendHandler) bounds(topK int, threshold *float64) (int, float64) {
	if topK <= 0 {
		topK = h.defaultTopK
	}
	t := h.minSimilarity
	if threshold != nil {
		t = *threshold
	}
	return topK, t
}

// Recommend returns books similar to a free-text query.
func (h *RecommendHandler) Recommend(c fiber.Ctx) error {
	var body struct {
		Query     string   `json:"query"`
		TopK      int      `json:"top_k"`
		Threshold *float64 `json:"threshold"`
		Explain   bool     `json:"explain"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	k, threshold := h.bounds(body.TopK, body.Threshold)
	recs, err := h.svc.RecommendByQuery(c.Context(), body.Query, k, threshold, body.Explain)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"query": body.Query, "recommendations": recs})
}

// Similar returns books similar to a known catalog title.
func (h *RecommendHandler) Similar(c fiber.Ctx) error {
	var body struct {
		Title     string   `json:"title"`
		TopK      int      `json:"top_k"`
		Threshold *float64 `json:"threshold"`
		Explain   bool     `json:"explain"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	k, threshold := h.bounds(body.TopK, body.Threshold)
	recs, err := h.svc.RecommendByTitle(c.Context(), body.Title, k, threshold, body.Explain)
	if err != nil {
		if errors.Is(err, port.ErrTitleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"title": body.Title, "recommendations": recs})
}

// Personalized returns a ranking from the external personalization
// service. An empty list is a normal response, not a failure.
func (h *RecommendHandler) Personalized(c fiber.Ctx) error {
	var body struct {
		History []string `json:"history"`
		TopK    int      `json:"top_k"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	k := body.TopK
	if k <= 0 {
		k = h.defaultTopK
	}
	items := h.svc.Personalized(c.Context(), body.History, k)
	return c.JSON(fiber.Map{"recommendations": items})
}

// Explain justifies one recommendation.
func (h *RecommendHandler) Explain(c fiber.Ctx) error {
	var body struct {
		Query      string  `json:"query"`
		Title      string  `json:"title"`
		Similarity float64 `json:"similarity"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Query == "" || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query and title are required"})
	}

	exp, err := h.svc.Explain(c.Context(), body.Query, body.Title, body.Similarity)
	if err != nil {
		if errors.Is(err, port.ErrTitleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(exp)
}
