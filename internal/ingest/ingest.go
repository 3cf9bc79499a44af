package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// DefaultBatchSize is how many combined texts go to the embedding backend
// per request.
const DefaultBatchSize = 32

// rawLine is the wire shape of one raw book record, before embedding.
type rawLine struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Authors     string  `json:"authors"`
	Genres      string  `json:"genres"`
	Description string  `json:"description"`
	Tags        string  `json:"tags"`
	Rating      float64 `json:"rating"`
}

// ReadRaw loads raw book records from a JSONL file, skipping malformed and
// titleless lines and deduplicating by normalized title (first occurrence
// wins).
func ReadRaw(path string) ([]domain.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", port.ErrCatalogNotFound, path)
		}
		return nil, fmt.Errorf("open raw catalog: %w", err)
	}
	defer f.Close()

	var (
		books   []domain.Book
		seen    = make(map[string]bool)
		skipped int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rawLine
		if err := json.Unmarshal(line, &rec); err != nil || rec.Title == "" {
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
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan raw catalog: %w", err)
	}

	if skipped > 0 {
		slog.Warn("raw catalog lines skipped", "path", path, "skipped", skipped)
	}
	return books, nil
}

// CombinedText builds the text a book is embedded from. The title is
// repeated to weight it above the other fields, then authors, genres,
// description, and tags follow with field markers.
func CombinedText(b domain.Book) string {
	title := strings.ToLower(b.Title)
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		sb.WriteString(title)
		sb.WriteString(" ")
	}
	sb.WriteString("by ")
	sb.WriteString(strings.ToLower(b.Authors))
	sb.WriteString(". genres: ")
	sb.WriteString(b.Genres)
	sb.WriteString(". description: ")
	sb.WriteString(b.Description)
	sb.WriteString(". tags: ")
	sb.WriteString(b.Tags)
	return sb.String()
}

// EmbedCatalog vectorizes every book's combined text in batches, returning
// one embedding per book in catalog order.
func EmbedCatalog(ctx context.Context, ai port.AIProvider, books []domain.Book, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	texts := make([]string, len(books))
	for i, b := range books {
		texts[i] = CombinedText(b)
	}

	vectors := make([][]float32, 0, len(books))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := ai.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: batch at %d returned %d embeddings for %d texts",
				port.ErrLengthMismatch, start, len(batch), end-start)
		}

		vectors = append(vectors, batch...)
		slog.Info("embedded batch", "done", end, "total", len(texts))
	}
	return vectors, nil
}
