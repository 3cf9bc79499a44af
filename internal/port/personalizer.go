package port

import (
	"context"

	"github.com/mattear-com/deepshelf/internal/domain"
)

// Personalizer ranks titles for a user based on their interaction history.
// Implementations must degrade gracefully: any failure of the backing
// service yields an empty list, never an error, so callers can always
// proceed with zero personalized results.
type Personalizer interface {
	Recommend(ctx context.Context, history []string, topK int) []domain.PersonalizedItem
}
