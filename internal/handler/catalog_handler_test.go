package handler

import (
	"testing"

	"github.com/mattear-com/deepshelf/internal/domain"
)

func searchFixture() []domain.Book {
	return []domain.Book{
		{ID: "1", Title: "Dune", Authors: "Frank Herbert", Genres: "Science Fiction"},
		{ID: "2", Title: "Dune Messiah", Authors: "Frank Herbert", Genres: "Science Fiction"},
		{ID: "3", Title: "Emma", Authors: "Jane Austen", Genres: "Romance, Classic"},
		{ID: "4", Title: "Persuasion", Authors: "Jane Austen", Genres: "romance"},
	}
}

func TestSearchCatalog_MatchesTitleAndAuthor(t *testing.T) {
	books := searchFixture()

	byTitle := searchCatalog(books, "dune")
	if len(byTitle) != 2 {
		t.Fatalf("title search returned %d books, want 2", len(byTitle))
	}
	if byTitle[0].Title != "Dune" || byTitle[1].Title != "Dune Messiah" {
		t.Errorf("title search lost catalog order: %q, %q", byTitle[0].Title, byTitle[1].Title)
	}

	byAuthor := searchCatalog(books, "AUSTEN")
	if len(byAuthor) != 2 {
		t.Fatalf("author search returned %d books, want 2", len(byAuthor))
	}

	if hits := searchCatalog(books, "nonexistent"); len(hits) != 0 {
		t.Errorf("no-match search returned %d books", len(hits))
	}
}

func TestCatalogDistributions(t *testing.T) {
	genres, authors := catalogDistributions(searchFixture())

	// "Romance" and "romance" must aggregate to one bucket.
	if genres["romance"] != 2 {
		t.Errorf("genres[romance] = %d, want 2", genres["romance"])
	}
	if genres["science fiction"] != 2 {
		t.Errorf("genres[science fiction] = %d, want 2", genres["science fiction"])
	}
	if genres["classic"] != 1 {
		t.Errorf("genres[classic] = %d, want 1", genres["classic"])
	}
	if authors["frank herbert"] != 2 {
		t.Errorf("authors[frank herbert] = %d, want 2", authors["frank herbert"])
	}
	if authors["jane austen"] != 2 {
		t.Errorf("authors[jane austen] = %d, want 2", authors["jane austen"])
	}
}

func TestPaginate_Bounds(t *testing.T) {
	books := searchFixture()

	if page := paginate(books, 0, 2); len(page) != 2 || page[0].ID != "1" {
		t.Errorf("first page wrong: %+v", page)
	}
	if page := paginate(books, 3, 10); len(page) != 1 || page[0].ID != "4" {
		t.Errorf("final partial page wrong: %+v", page)
	}
	if page := paginate(books, 10, 2); len(page) != 0 {
		t.Errorf("out-of-range offset returned %d books", len(page))
	}
}
