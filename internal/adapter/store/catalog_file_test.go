package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

func TestFileCatalog_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	content := `{"id":"1","title":"Dune","authors":"Frank Herbert","genres":"Science Fiction","embedding":[1,0]}
{"id":"2","title":"DUNE","authors":"Someone Else","genres":"Science Fiction","embedding":[0,1]}
not json at all
{"id":"3","title":"Emma","authors":"Jane Austen","genres":"Romance","rating":4.2,"embedding":[0,1]}
{"id":"4","title":"No Vector"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	books, vectors, err := NewFileCatalog(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(books) != 2 || len(vectors) != 2 {
		t.Fatalf("expected 2 clean records, got %d books / %d vectors", len(books), len(vectors))
	}
	// Duplicate title: first occurrence wins.
	if books[0].Authors != "Frank Herbert" {
		t.Errorf("dedup kept wrong record: %+v", books[0])
	}
	if books[1].Rating != 4.2 {
		t.Errorf("rating not carried: %+v", books[1])
	}
	if books[0].TitleKey != "dune" {
		t.Errorf("title key not normalized: %q", books[0].TitleKey)
	}
}

func TestWriteCatalog_ReadableByLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	books := []domain.Book{
		{ID: "1", Title: "Dune", Authors: "Frank Herbert", Genres: "Science Fiction", Rating: 4.3},
		{ID: "2", Title: "Emma", Authors: "Jane Austen", Genres: "Romance"},
	}
	vectors := [][]float32{{1, 0}, {0, 1}}

	if err := WriteCatalog(path, books, vectors); err != nil {
		t.Fatalf("WriteCatalog failed: %v", err)
	}

	got, gotVectors, err := NewFileCatalog(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || len(gotVectors) != 2 {
		t.Fatalf("round trip lost records: %d books / %d vectors", len(got), len(gotVectors))
	}
	if got[0].Rating != 4.3 || got[1].Authors != "Jane Austen" {
		t.Errorf("fields not preserved: %+v", got)
	}
	if gotVectors[0][0] != 1 || gotVectors[1][1] != 1 {
		t.Errorf("embeddings not preserved: %v", gotVectors)
	}
}

func TestWriteCatalog_LengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	err := WriteCatalog(path, []domain.Book{{Title: "A"}}, nil)
	if !errors.Is(err, port.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestFileCatalog_Missing(t *testing.T) {
	_, _, err := NewFileCatalog(filepath.Join(t.TempDir(), "absent.jsonl")).Load(context.Background())
	if !errors.Is(err, port.ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}

func TestParseVector(t *testing.T) {
	v, err := parseVector("[0.5, -1, 2.25]")
	if err != nil {
		t.Fatalf("parseVector failed: %v", err)
	}
	if len(v) != 3 || v[0] != 0.5 || v[1] != -1 || v[2] != 2.25 {
		t.Errorf("unexpected vector: %v", v)
	}

	for _, bad := range []string{"", "0.5,1", "[a,b]", "[1,2"} {
		if _, err := parseVector(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
