package explain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/port"
)

// significanceThreshold is the minimum contribution share for a feature to
// be mentioned in a summary.
const significanceThreshold = 0.1

const summarizerSystemPrompt = `You are a book recommendation assistant. In one or two sentences, explain to a reader why the given book matches their query. Mention concrete shared genres, themes, or authors. Do not invent facts not present in the book details.`

// summarizer produces a free-form summary for one recommendation. It is
// one link of the engine's fallback chain: returning an error hands off to
// the next strategy.
type summarizer func(ctx context.Context, query string, book domain.Book, scores domain.ContributionScores) (string, []string, error)

// Engine produces human-readable justifications for recommendations. It
// tries an ordered chain of summary strategies; the last one is the
// deterministic template and always succeeds, so Explain never fails a
// request.
type Engine struct {
	chain   []summarizer
	timeout time.Duration
}

// NewEngine builds an explanation engine. The AI provider is optional:
// when nil, only the deterministic template runs.
func NewEngine(ai port.AIProvider, timeout time.Duration) *Engine {
	e := &Engine{timeout: timeout}
	if ai != nil {
		e.chain = append(e.chain, e.generativeSummary(ai))
	}
	e.chain = append(e.chain, templateSummary)
	return e
}

// Explain justifies recommending book for query at the given similarity.
func (e *Engine) Explain(ctx context.Context, query string, book domain.Book, similarity float64) domain.Explanation {
	scores := ContributionScores(query, book)

	var summary string
	var features []string
	for _, s := range e.chain {
		var err error
		summary, features, err = s(ctx, query, book, scores)
		if err == nil {
			break
		}
		slog.Warn("summary strategy failed, falling back", "book", book.Title, "error", err)
	}

	return domain.Explanation{
		MatchScore:       int(math.Round(similarity * 100)),
		Confidence:       confidence(similarity, scores),
		Summary:          summary,
		MatchingFeatures: features,
		Details: domain.ExplanationDetails{
			GenresContribution:              int(math.Round(scores.Genres * 100)),
			DescriptionKeywordsContribution: int(math.Round(scores.DescriptionKeywords * 100)),
			AuthorsContribution:             int(math.Round(scores.Authors * 100)),
		},
	}
}

// confidence grades a recommendation from its similarity score, then
// upgrades when the contribution mass is large. Independent of which
// summary strategy produced the text.
func confidence(similarity float64, scores domain.ContributionScores) string {
	level := domain.ConfidenceLow
	if similarity > 0.5 {
		level = domain.ConfidenceMedium
	}
	if similarity > 0.7 {
		level = domain.ConfidenceHigh
	}

	sum := scores.Sum()
	if sum > 0.6 {
		return domain.ConfidenceVeryHigh
	}
	if sum > 0.3 && level == domain.ConfidenceLow {
		return domain.ConfidenceMedium
	}
	return level
}

// generativeSummary asks the chat model for a summary within the engine's
// timeout. Any failure falls through to the next strategy.
func (e *Engine) generativeSummary(ai port.AIProvider) summarizer {
	return func(ctx context.Context, query string, book domain.Book, scores domain.ContributionScores) (string, []string, error) {
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		prompt := fmt.Sprintf(
			"Query: %s\n\nBook: %s\nAuthors: %s\nGenres: %s\nDescription: %s",
			query, book.Title, book.Authors, book.Genres, book.Description,
		)
		text, err := ai.Chat(ctx, summarizerSystemPrompt, prompt)
		if err != nil {
			return "", nil, fmt.Errorf("generative summary: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", nil, fmt.Errorf("generative summary: empty response")
		}
		return text, matchingFeatures(query, book, scores), nil
	}
}

// templateSummary is the terminal strategy: a deterministic sentence built
// from the significant contribution features. It cannot fail.
func templateSummary(_ context.Context, query string, book domain.Book, scores domain.ContributionScores) (string, []string, error) {
	features := matchingFeatures(query, book, scores)

	summary := fmt.Sprintf("Recommended because it's a good match for your interest in '%s'. ", query)
	if len(features) > 0 {
		summary += "Specifically, it " + strings.Join(features, ", and ") + "."
	} else {
		summary += "Its content aligns well with your query."
	}
	return summary, features, nil
}

// matchingFeatures lists, in fixed order, the feature descriptions whose
// contribution cleared the significance threshold.
func matchingFeatures(query string, book domain.Book, scores domain.ContributionScores) []string {
	var features []string

	if scores.Genres > significanceThreshold {
		if genres := book.GenreList(); len(genres) > 0 {
			features = append(features, "shares genres like "+strings.Join(genres, ", "))
		}
	}
	if scores.DescriptionKeywords > significanceThreshold {
		if keywords := SharedKeywords(query, book, 3); len(keywords) > 0 {
			features = append(features, "has keywords in description like '"+strings.Join(keywords, ", ")+"'")
		}
	}
	if scores.Authors > significanceThreshold {
		if book.Authors != "" && book.Authors != "Unknown Author" {
			features = append(features, "is by author(s) "+book.Authors)
		}
	}
	return features
}
