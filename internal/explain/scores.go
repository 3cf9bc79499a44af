package explain

import (
	"strings"

	"github.com/mattear-com/deepshelf/internal/domain"
)

// Per-feature contribution caps. The shares are a rule-based heuristic:
// genre overlap matters most, description keywords next, authors least.
const (
	genresWeight   = 0.5
	keywordsWeight = 0.3
	authorsWeight  = 0.2

	// keywordCap bounds how many shared description tokens count.
	keywordCap = 5
)

// ContributionScores computes per-feature shares for how much a book's
// genres, description keywords, and authors overlap the query text. Pure
// function, no side effects.
func ContributionScores(query string, book domain.Book) domain.ContributionScores {
	var scores domain.ContributionScores

	queryGenres := tokenSet(stripNoise(query, "genres", "genre"))
	bookGenres := listSet(book.Genres)
	if len(queryGenres) > 0 && len(bookGenres) > 0 {
		if overlap := intersectCount(queryGenres, bookGenres); overlap > 0 {
			scores.Genres = float64(overlap) / float64(maxInt(len(queryGenres), len(bookGenres))) * genresWeight
		}
	}

	queryWords := tokenSet(query)
	descWords := tokenSet(book.Description)
	if len(queryWords) > 0 && len(descWords) > 0 {
		if overlap := intersectCount(queryWords, descWords); overlap > 0 {
			ratio := float64(overlap) / keywordCap
			if ratio > 1 {
				ratio = 1
			}
			scores.DescriptionKeywords = ratio * keywordsWeight
		}
	}

	queryAuthors := tokenSet(stripNoise(query, "by"))
	bookAuthors := tokenSet(strings.ReplaceAll(book.Authors, ",", " "))
	if len(queryAuthors) > 0 && len(bookAuthors) > 0 {
		if overlap := intersectCount(queryAuthors, bookAuthors); overlap > 0 {
			scores.Authors = float64(overlap) / float64(maxInt(len(queryAuthors), len(bookAuthors))) * authorsWeight
		}
	}

	return scores
}

// SharedKeywords returns up to limit description tokens also present in the
// query, in description token order.
func SharedKeywords(query string, book domain.Book, limit int) []string {
	queryWords := tokenSet(query)
	var out []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(book.Description)) {
		if queryWords[w] && !seen[w] {
			out = append(out, w)
			seen[w] = true
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// tokenSet splits text into a set of lowercased whitespace tokens.
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// listSet splits a comma-separated field into a set of lowercased tokens.
func listSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range domain.SplitList(strings.ToLower(s)) {
		set[t] = true
	}
	return set
}

// stripNoise removes marker words like "genre" or "by" from the query so
// they do not count as overlap tokens.
func stripNoise(s string, words ...string) string {
	lower := strings.ToLower(s)
	for _, w := range words {
		lower = strings.ReplaceAll(lower, w, " ")
	}
	return lower
}

func intersectCount(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
