package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// fakeAI records the batch sizes it is asked to embed and returns one
// deterministic vector per input text.
type fakeAI struct {
	batches []int
	fail    bool
}

func (f *fakeAI) ModelName() string { return "fake-model" }

func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 0}, nil
}

func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, errors.New("backend down")
	}
	f.batches = append(f.batches, len(texts))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(i)}
	}
	return out, nil
}

func (f *fakeAI) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("not implemented")
}

func TestCombinedText_WeightsTitle(t *testing.T) {
	b := domain.Book{
		Title:       "Dune",
		Authors:     "Frank Herbert",
		Genres:      "Science Fiction",
		Description: "Desert planet politics.",
		Tags:        "classic",
	}
	text := CombinedText(b)

	if got := strings.Count(text, "dune"); got != 3 {
		t.Errorf("title occurs %d times, want 3", got)
	}
	for _, part := range []string{
		"by frank herbert",
		"genres: Science Fiction",
		"description: Desert planet politics.",
		"tags: classic",
	} {
		if !strings.Contains(text, part) {
			t.Errorf("combined text missing %q: %q", part, text)
		}
	}
}

func TestEmbedCatalog_Batches(t *testing.T) {
	books := make([]domain.Book, 7)
	for i := range books {
		books[i] = domain.Book{Title: strings.Repeat("x", i+1)}
	}

	ai := &fakeAI{}
	vectors, err := EmbedCatalog(context.Background(), ai, books, 3)
	if err != nil {
		t.Fatalf("EmbedCatalog failed: %v", err)
	}

	if len(vectors) != len(books) {
		t.Fatalf("got %d vectors for %d books", len(vectors), len(books))
	}
	wantBatches := []int{3, 3, 1}
	if len(ai.batches) != len(wantBatches) {
		t.Fatalf("made %d batch calls, want %d", len(ai.batches), len(wantBatches))
	}
	for i, want := range wantBatches {
		if ai.batches[i] != want {
			t.Errorf("batch %d size = %d, want %d", i, ai.batches[i], want)
		}
	}
}

func TestEmbedCatalog_PropagatesBackendError(t *testing.T) {
	books := []domain.Book{{Title: "A"}}
	_, err := EmbedCatalog(context.Background(), &fakeAI{fail: true}, books, 3)
	if err == nil {
		t.Fatal("expected an error when the backend fails")
	}
}

func TestReadRaw_SkipsAndDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.jsonl")
	content := strings.Join([]string{
		`{"id":"1","title":"Dune","authors":"Frank Herbert","genres":"Science Fiction"}`,
		`not json at all`,
		`{"id":"2","authors":"No Title"}`,
		`{"id":"3","title":"  DUNE ","authors":"Impostor"}`,
		`{"id":"4","title":"Emma","authors":"Jane Austen","rating":4.1}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	books, err := ReadRaw(path)
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}
	if books[0].Authors != "Frank Herbert" {
		t.Errorf("duplicate title did not keep the first occurrence: %q", books[0].Authors)
	}
	if books[1].Rating != 4.1 {
		t.Errorf("rating not carried: %v", books[1].Rating)
	}
	if books[0].TitleKey != "dune" {
		t.Errorf("TitleKey = %q, want %q", books[0].TitleKey, "dune")
	}
}

func TestReadRaw_MissingFile(t *testing.T) {
	_, err := ReadRaw(filepath.Join(t.TempDir(), "absent.jsonl"))
	if !errors.Is(err, port.ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}
