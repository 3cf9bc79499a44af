package port

import (
	"context"

	"github.com/mattear-com/deepshelf/internal/domain"
)

// CatalogSource supplies the catalog snapshot the index is built from:
// book records aligned 1:1 by position with their embedding vectors.
type CatalogSource interface {
	// Load reads the full catalog. Implementations must deduplicate records
	// by normalized title (first occurrence wins) and return vectors of a
	// single consistent dimension.
	Load(ctx context.Context) ([]domain.Book, [][]float32, error)
}
