package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// FileCatalog loads the catalog snapshot from a JSONL file: one book per
// line with its pre-computed embedding inline.
type FileCatalog struct {
	path string
}

// NewFileCatalog creates a file-backed catalog source.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// catalogLine is the wire shape of one catalog record.
type catalogLine struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Authors     string    `json:"authors"`
	Genres      string    `json:"genres"`
	Description string    `json:"description"`
	Tags        string    `json:"tags"`
	Rating      float64   `json:"rating"`
	Embedding   []float32 `json:"embedding"`
}

// Load reads every record, skipping malformed lines and deduplicating by
// normalized title (first occurrence wins).
func (c *FileCatalog) Load(ctx context.Context) ([]domain.Book, [][]float32, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", port.ErrCatalogNotFound, c.path)
		}
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var (
		books   []domain.Book
		vectors [][]float32
		seen    = make(map[string]bool)
		skipped int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec catalogLine
		if err := json.Unmarshal(line, &rec); err != nil || rec.Title == "" || len(rec.Embedding) == 0 {
			skipped++
			continue
		}

		key := domain.TitleKey(rec.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		books = append(books, domain.Book{
			ID:          rec.ID,
			Title:       rec.Title,
			TitleKey:    key,
			Authors:     rec.Authors,
			Genres:      rec.Genres,
			Description: rec.Description,
			Tags:        rec.Tags,
			Rating:      rec.Rating,
		})
		vectors = append(vectors, rec.Embedding)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan catalog: %w", err)
	}

	if skipped > 0 {
		slog.Warn("catalog lines skipped", "path", c.path, "skipped", skipped)
	}
	slog.Info("catalog loaded", "path", c.path, "books", len(books))
	return books, vectors, nil
}

// WriteCatalog persists a catalog snapshot with its embeddings in the JSONL
// format Load reads. Books and vectors must align 1:1 by position.
func WriteCatalog(path string, books []domain.Book, vectors [][]float32) error {
	if len(books) != len(vectors) {
		return fmt.Errorf("%w: %d records, %d vectors", port.ErrLengthMismatch, len(books), len(vectors))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i, b := range books {
		rec := catalogLine{
			ID:          b.ID,
			Title:       b.Title,
			Authors:     b.Authors,
			Genres:      b.Genres,
			Description: b.Description,
			Tags:        b.Tags,
			Rating:      b.Rating,
			Embedding:   vectors[i],
		}
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("encode catalog line %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush catalog: %w", err)
	}
	return nil
}
