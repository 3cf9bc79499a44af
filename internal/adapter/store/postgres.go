package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// PostgresCatalog loads the catalog snapshot from a books table whose
// embedding column holds pgvector-style text ("[0.1,0.2,...]").
type PostgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog opens a connection and returns a catalog source.
func NewPostgresCatalog(databaseURL string) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresCatalog{db: db}, nil
}

// Close closes the database connection.
func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}

// Load reads the full catalog in a stable order, deduplicating by
// normalized title (first occurrence wins).
func (c *PostgresCatalog) Load(ctx context.Context) ([]domain.Book, [][]float32, error) {
	query := `SELECT id, title, COALESCE(authors, ''), COALESCE(genres, ''),
	                 COALESCE(description, ''), COALESCE(tags, ''), COALESCE(rating, 0),
	                 embedding
	          FROM books
	          ORDER BY id`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var (
		books   []domain.Book
		vectors [][]float32
		seen    = make(map[string]bool)
	)

	for rows.Next() {
		var b domain.Book
		var raw string
		if err := rows.Scan(&b.ID, &b.Title, &b.Authors, &b.Genres, &b.Description, &b.Tags, &b.Rating, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan book: %w", err)
		}

		v, err := parseVector(raw)
		if err != nil {
			slog.Warn("book skipped: bad embedding", "id", b.ID, "error", err)
			continue
		}

		b.TitleKey = domain.TitleKey(b.Title)
		if seen[b.TitleKey] {
			continue
		}
		seen[b.TitleKey] = true

		books = append(books, b)
		vectors = append(vectors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate books: %w", err)
	}

	if len(books) == 0 {
		return nil, nil, fmt.Errorf("%w: books table is empty", port.ErrCatalogNotFound)
	}

	slog.Info("catalog loaded", "source", "postgres", "books", len(books))
	return books, vectors, nil
}

// parseVector parses pgvector text format: [0.1,0.2,0.3].
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("not a vector literal: %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
