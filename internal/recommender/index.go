package recommender

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// Index is an immutable in-memory similarity index over the catalog.
//
// Vectors are stored unit-L2-normalized in a flat row-major array. Because
// both the stored vectors and every query vector are unit length, cosine
// similarity falls out of squared Euclidean distance as 1 - d²/2; that
// identity is the numeric core of the whole engine and holds only while the
// normalization invariant does.
//
// Once built, an Index is read-only and safe for unlimited concurrent
// readers without locking.
type Index struct {
	books   []domain.Book
	vectors []float32
	dim     int
	byTitle map[string]int
}

// Build constructs an Index from a catalog snapshot. Records and vectors
// must align 1:1 by position; every vector must share one dimension and be
// finite. All vectors are normalized to unit L2 norm during the build.
func Build(books []domain.Book, vectors [][]float32) (*Index, error) {
	if len(books) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records, %d vectors", port.ErrLengthMismatch, len(books), len(vectors))
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", port.ErrCatalogNotFound)
	}

	dim := len(vectors[0])
	idx := &Index{
		books:   make([]domain.Book, len(books)),
		vectors: make([]float32, 0, len(books)*dim),
		dim:     dim,
		byTitle: make(map[string]int, len(books)),
	}

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dim %d, want %d", port.ErrDimensionMismatch, i, len(v), dim)
		}
		if !validate(v) {
			return nil, fmt.Errorf("%w: vector %d", port.ErrInvalidVector, i)
		}

		b := books[i]
		if b.TitleKey == "" {
			b.TitleKey = domain.TitleKey(b.Title)
		}
		idx.books[i] = b

		row := make([]float32, dim)
		copy(row, v)
		idx.vectors = append(idx.vectors, NormalizeL2(row)...)

		// First occurrence wins on duplicate titles.
		if _, ok := idx.byTitle[b.TitleKey]; !ok {
			idx.byTitle[b.TitleKey] = i
		}
	}

	slog.Info("similarity index built", "books", len(idx.books), "dim", dim)
	return idx, nil
}

// Len returns the number of indexed books.
func (idx *Index) Len() int { return len(idx.books) }

// Dimension returns the embedding dimension of the index.
func (idx *Index) Dimension() int { return idx.dim }

// AssertDimension checks the index against the dimension the deployment
// expects. A mismatch means the catalog was embedded with a different model
// than the one configured for queries, so callers should fail fast.
func (idx *Index) AssertDimension(want int) error {
	if idx.dim != want {
		return fmt.Errorf("%w: index has dim %d, configured %d", port.ErrDimensionMismatch, idx.dim, want)
	}
	return nil
}

// BookAt returns the book at position pos.
func (idx *Index) BookAt(pos int) domain.Book { return idx.books[pos] }

// Books returns the indexed books in catalog order. The returned slice is
// shared and must not be mutated.
func (idx *Index) Books() []domain.Book { return idx.books }

// VectorAt returns a copy of the normalized vector at position pos.
func (idx *Index) VectorAt(pos int) []float32 {
	out := make([]float32, idx.dim)
	copy(out, idx.vectors[pos*idx.dim:(pos+1)*idx.dim])
	return out
}

// LookupByTitle resolves a display title to its catalog position. Matching
// is exact on the normalized title key, so it is case- and
// whitespace-insensitive.
func (idx *Index) LookupByTitle(title string) (int, bool) {
	pos, ok := idx.byTitle[domain.TitleKey(title)]
	return pos, ok
}

// Search returns at most k books ranked by descending cosine similarity to
// query, dropping anything below threshold and the position excludePos
// (pass a negative excludePos to exclude nothing). Ties keep catalog order.
// An empty result is a normal outcome, never an error.
func (idx *Index) Search(query []float32, k int, threshold float64, excludePos int) ([]domain.Recommendation, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has dim %d, want %d", port.ErrDimensionMismatch, len(query), idx.dim)
	}
	if !validate(query) {
		return nil, port.ErrInvalidVector
	}
	if k <= 0 {
		return []domain.Recommendation{}, nil
	}

	q := make([]float32, idx.dim)
	copy(q, query)
	NormalizeL2(q)

	scored := make([]domain.Recommendation, 0, len(idx.books))
	for pos := range idx.books {
		if pos == excludePos {
			continue
		}
		sim := 1 - sqDist(q, idx.vectors, pos*idx.dim)/2
		if sim < threshold {
			continue
		}
		scored = append(scored, domain.Recommendation{Book: idx.books[pos], Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	// Excluding the reference item happens before ranking, so no over-fetch
	// is needed to return k usable results.
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// SearchByTitle finds books similar to the given catalog title, excluding
// the title's own record from the results.
func (idx *Index) SearchByTitle(title string, k int, threshold float64) ([]domain.Recommendation, error) {
	pos, ok := idx.LookupByTitle(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", port.ErrTitleNotFound, title)
	}
	return idx.Search(idx.VectorAt(pos), k, threshold, pos)
}
