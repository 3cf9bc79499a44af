package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/explain"
	"github.com/mattear-com/deepshelf/internal/feedback"
	"github.com/mattear-com/deepshelf/internal/port"
	"github.com/mattear-com/deepshelf/internal/recommender"
)

// Embedder is the one operation the service needs from the AI backend:
// text in, fixed-dimension vector out.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnnotatedRecommendation is a recommendation optionally carrying its
// explanation.
type AnnotatedRecommendation struct {
	domain.Recommendation
	Explanation *domain.Explanation `json:"explanation,omitempty"`
}

// RecommendService orchestrates the similarity index, the explanation
// engine, the feedback ledger, and the personalization gateway. All
// dependencies are injected at construction; the service holds no mutable
// state of its own and is safe for concurrent use.
type RecommendService struct {
	index        *recommender.Index
	embedder     Embedder
	explainer    *explain.Engine
	ledger       *feedback.Ledger
	personalizer port.Personalizer
}

// NewRecommendService wires a recommendation service.
func NewRecommendService(
	index *recommender.Index,
	embedder Embedder,
	explainer *explain.Engine,
	ledger *feedback.Ledger,
	personalizer port.Personalizer,
) *RecommendService {
	return &RecommendService{
		index:        index,
		embedder:     embedder,
		explainer:    explainer,
		ledger:       ledger,
		personalizer: personalizer,
	}
}

// Index exposes the underlying similarity index for read-only use.
func (s *RecommendService) Index() *recommender.Index {
	return s.index
}

// RecommendByQuery embeds a free-text query and returns the top-k similar
// books, each optionally annotated with an explanation.
func (s *RecommendService) RecommendByQuery(ctx context.Context, query string, k int, threshold float64, annotate bool) ([]AnnotatedRecommendation, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	recs, err := s.index.Search(vector, k, threshold, -1)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	slog.Info("query recommendations", "query", query, "results", len(recs))
	return s.annotate(ctx, query, recs, annotate), nil
}

// RecommendByTitle returns the top-k books similar to a catalog title,
// excluding the title's own record.
func (s *RecommendService) RecommendByTitle(ctx context.Context, title string, k int, threshold float64, annotate bool) ([]AnnotatedRecommendation, error) {
	recs, err := s.index.SearchByTitle(title, k, threshold)
	if err != nil {
		return nil, err
	}

	slog.Info("title recommendations", "title", title, "results", len(recs))
	return s.annotate(ctx, title, recs, annotate), nil
}

// Explain justifies one recommendation for a known catalog title.
func (s *RecommendService) Explain(ctx context.Context, query, title string, similarity float64) (domain.Explanation, error) {
	pos, ok := s.index.LookupByTitle(title)
	if !ok {
		return domain.Explanation{}, fmt.Errorf("%w: %q", port.ErrTitleNotFound, title)
	}
	return s.explainer.Explain(ctx, query, s.index.BookAt(pos), similarity), nil
}

// RecordFeedback appends one user judgment to the ledger.
func (s *RecommendService) RecordFeedback(event domain.FeedbackEvent) error {
	return s.ledger.Record(event)
}

// FeedbackStats aggregates the full ledger.
func (s *RecommendService) FeedbackStats() (domain.FeedbackStats, error) {
	events, err := s.ledger.ReadAll()
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("read feedback: %w", err)
	}
	return feedback.Aggregate(events), nil
}

// Personalized delegates to the personalization gateway. When the caller
// supplies no history, recent positively-rated titles stand in for it. An
// empty result is a normal, expected outcome.
func (s *RecommendService) Personalized(ctx context.Context, history []string, topK int) []domain.PersonalizedItem {
	if len(history) == 0 {
		events, err := s.ledger.ReadAll()
		if err != nil {
			slog.Warn("implicit history unavailable", "error", err)
			return []domain.PersonalizedItem{}
		}
		history = feedback.PositiveTitles(events, topK)
	}
	return s.personalizer.Recommend(ctx, history, topK)
}

// annotate attaches explanations when requested.
func (s *RecommendService) annotate(ctx context.Context, query string, recs []domain.Recommendation, annotate bool) []AnnotatedRecommendation {
	out := make([]AnnotatedRecommendation, len(recs))
	for i, rec := range recs {
		out[i] = AnnotatedRecommendation{Recommendation: rec}
		if annotate {
			exp := s.explainer.Explain(ctx, query, rec.Book, rec.Similarity)
			out[i].Explanation = &exp
		}
	}
	return out
}
