package domain

import "strings"

// Book is one catalog record. Records are created during ingestion and never
// mutated after the index is built.
type Book struct {
	ID          string  `json:"id"          db:"id"`
	Title       string  `json:"title"       db:"title"`
	TitleKey    string  `json:"-"           db:"title_key"`
	Authors     string  `json:"authors"     db:"authors"`
	Genres      string  `json:"genres"      db:"genres"`
	Description string  `json:"description" db:"description"`
	Tags        string  `json:"tags"        db:"tags"`
	Rating      float64 `json:"rating,omitempty" db:"rating"`
}

// Recommendation is a Book paired with its computed similarity score.
type Recommendation struct {
	Book
	Similarity float64 `json:"similarity"`
}

// PersonalizedItem is one entry in a personalized ranking returned by the
// external personalization service.
type PersonalizedItem struct {
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
	Genres string  `json:"genres"`
}

// TitleKey normalizes a display title for catalog lookup: lowercased with
// surrounding whitespace trimmed and inner runs collapsed to single spaces.
func TitleKey(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// GenreList splits the catalog's comma-separated genre convention into
// trimmed non-empty tokens.
func (b Book) GenreList() []string {
	return SplitList(b.Genres)
}

// SplitList splits a comma-separated multi-value field into trimmed
// non-empty tokens.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
