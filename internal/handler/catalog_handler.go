package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/mattear-com/deepshelf/internal/clustering"
	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
	"github.com/mattear-com/deepshelf/internal/recommender"
)

const (
	maxPageSize       = 100
	minSearchQueryLen = 2
	defaultSampleSize = 5
	maxSampleSize     = 20
)

// CatalogHandler serves catalog browsing: paginated book listings and
// cluster ("collection") navigation.
type CatalogHandler struct {
	index    *recommender.Index
	clusters *clustering.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(index *recommender.Index, clusters *clustering.Service) *CatalogHandler {
	return &CatalogHandler{index: index, clusters: clusters}
}

// Register sets up catalog routes.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/books", h.ListBooks)
	router.Get("/books/search", h.SearchBooks)
	router.Get("/stats", h.Stats)
	router.Get("/clusters", h.ListClusters)
	router.Get("/clusters/:id/books", h.ClusterBooks)
	router.Get("/clusters/:id/sample", h.ClusterSample)
}

// ListBooks returns a page of the catalog in its stable order.
func (h *CatalogHandler) ListBooks(c fiber.Ctx) error {
	offset, limit := pageParams(c)

	books := h.index.Books()
	page := paginate(books, offset, limit)

	return c.JSON(fiber.Map{
		"total":  len(books),
		"offset": offset,
		"limit":  limit,
		"books":  page,
	})
}

// SearchBooks matches the query against titles and author names,
// case-insensitively, and returns a page of the hits in catalog order.
func (h *CatalogHandler) SearchBooks(c fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if len(query) < minSearchQueryLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("query must be at least %d characters", minSearchQueryLen),
		})
	}

	hits := searchCatalog(h.index.Books(), query)
	offset, limit := pageParams(c)
	return c.JSON(fiber.Map{
		"query":  query,
		"total":  len(hits),
		"offset": offset,
		"limit":  limit,
		"books":  paginate(hits, offset, limit),
	})
}

// Stats reports catalog-wide statistics: the book count plus genre and
// author frequency distributions.
func (h *CatalogHandler) Stats(c fiber.Ctx) error {
	genres, authors := catalogDistributions(h.index.Books())
	return c.JSON(fiber.Map{
		"total_books":   h.index.Len(),
		"genres_count":  genres,
		"authors_count": authors,
	})
}

// ListClusters returns every cluster with its label and size.
func (h *CatalogHandler) ListClusters(c fiber.Ctx) error {
	labels := h.clusters.Labels()
	out := make([]fiber.Map, 0, len(labels))
	for id := 0; id < h.clusters.ClusterCount(); id++ {
		out = append(out, fiber.Map{
			"id":    id,
			"label": labels[id],
			"size":  h.clusters.Size(id),
		})
	}
	return c.JSON(fiber.Map{"clusters": out})
}

// ClusterBooks returns a page of one cluster's members.
func (h *CatalogHandler) ClusterBooks(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cluster id"})
	}

	books, err := h.clusters.BooksIn(id)
	if err != nil {
		if errors.Is(err, port.ErrClusterNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	label, _ := h.clusters.Label(id)
	offset, limit := pageParams(c)
	return c.JSON(fiber.Map{
		"cluster_id": id,
		"label":      label,
		"total":      len(books),
		"offset":     offset,
		"limit":      limit,
		"books":      paginate(books, offset, limit),
	})
}

// ClusterSample returns a random sample of one cluster's members.
func (h *CatalogHandler) ClusterSample(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cluster id"})
	}

	size, _ := strconv.Atoi(c.Query("size", strconv.Itoa(defaultSampleSize)))
	if size < 1 || size > maxSampleSize {
		size = defaultSampleSize
	}

	books, err := h.clusters.Sample(id, size)
	if err != nil {
		if errors.Is(err, port.ErrClusterNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	label, _ := h.clusters.Label(id)
	return c.JSON(fiber.Map{
		"cluster_id": id,
		"label":      label,
		"books":      books,
	})
}

// searchCatalog returns the books whose title or author field contains the
// query as a case-insensitive substring, preserving catalog order.
func searchCatalog(books []domain.Book, query string) []domain.Book {
	needle := strings.ToLower(query)
	out := []domain.Book{}
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Authors), needle) {
			out = append(out, b)
		}
	}
	return out
}

// catalogDistributions counts how often each genre and author token occurs
// across the catalog. Tokens are lowercased so that casing variants
// aggregate together.
func catalogDistributions(books []domain.Book) (genres, authors map[string]int) {
	genres = map[string]int{}
	authors = map[string]int{}
	for _, b := range books {
		for _, g := range b.GenreList() {
			genres[strings.ToLower(g)]++
		}
		for _, a := range domain.SplitList(b.Authors) {
			authors[strings.ToLower(a)]++
		}
	}
	return genres, authors
}

func pageParams(c fiber.Ctx) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}
	return offset, limit
}

func paginate(books []domain.Book, offset, limit int) []domain.Book {
	if offset >= len(books) {
		return []domain.Book{}
	}
	end := offset + limit
	if end > len(books) {
		end = len(books)
	}
	return books[offset:end]
}
