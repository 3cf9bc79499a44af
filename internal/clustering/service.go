package clustering

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// Service holds the derived clustering state for one catalog snapshot.
// Like the index it serves, it is built once and read-only afterwards.
type Service struct {
	books  []domain.Book
	assign []int
	labels map[int]string
	k      int
}

// NewService computes (or reloads) the clustering for the given catalog.
// A cache file computed for a different catalog size or cluster count is
// discarded and the clustering recomputed; cache persistence failures are
// logged and non-fatal.
func NewService(books []domain.Book, vectors [][]float32, k int, seed int64, cachePath string) (*Service, error) {
	if k > len(books) {
		k = len(books)
	}

	if cachePath != "" {
		if assign, labels, ok := loadCache(cachePath, len(books), k); ok {
			slog.Info("cluster cache loaded", "path", cachePath, "books", len(books), "clusters", k)
			return &Service{books: books, assign: assign, labels: labels, k: k}, nil
		}
	}

	assign, err := KMeans(vectors, k, seed)
	if err != nil {
		return nil, fmt.Errorf("cluster catalog: %w", err)
	}
	labels := NameClusters(books, assign, k)

	if cachePath != "" {
		if err := saveCache(cachePath, len(books), k, assign, labels); err != nil {
			slog.Warn("cluster cache not persisted", "path", cachePath, "error", err)
		}
	}

	slog.Info("catalog clustered", "books", len(books), "clusters", k)
	return &Service{books: books, assign: assign, labels: labels, k: k}, nil
}

// ClusterCount returns the number of clusters.
func (s *Service) ClusterCount() int { return s.k }

// Assignments returns the position→cluster mapping. The returned slice is
// shared and must not be mutated.
func (s *Service) Assignments() []int { return s.assign }

// Labels returns the cluster id→name mapping.
func (s *Service) Labels() map[int]string { return s.labels }

// Label returns the descriptive name of one cluster.
func (s *Service) Label(id int) (string, error) {
	if id < 0 || id >= s.k {
		return "", fmt.Errorf("%w: %d", port.ErrClusterNotFound, id)
	}
	return s.labels[id], nil
}

// Size returns the number of books assigned to the cluster.
func (s *Service) Size(id int) int {
	n := 0
	for _, c := range s.assign {
		if c == id {
			n++
		}
	}
	return n
}

// BooksIn returns the cluster's members in catalog order.
func (s *Service) BooksIn(id int) ([]domain.Book, error) {
	if id < 0 || id >= s.k {
		return nil, fmt.Errorf("%w: %d", port.ErrClusterNotFound, id)
	}
	var out []domain.Book
	for pos, c := range s.assign {
		if c == id {
			out = append(out, s.books[pos])
		}
	}
	return out, nil
}

// Sample returns up to n random members of the cluster. An empty cluster
// yields an empty slice, not an error.
func (s *Service) Sample(id, n int) ([]domain.Book, error) {
	members, err := s.BooksIn(id)
	if err != nil {
		return nil, err
	}
	if n <= 0 || len(members) == 0 {
		return []domain.Book{}, nil
	}
	if n >= len(members) {
		return members, nil
	}
	out := make([]domain.Book, 0, n)
	for _, pos := range rand.Perm(len(members))[:n] {
		out = append(out, members[pos])
	}
	return out, nil
}
