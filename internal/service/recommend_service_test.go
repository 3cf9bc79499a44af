package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattear-com/deepshelf/internal/domain"
	"github.com/mattear-com/deepshelf/internal/explain"
	"github.com/mattear-com/deepshelf/internal/feedback"
	"github.com/mattear-com/deepshelf/internal/port"
	"github.com/mattear-com/deepshelf/internal/recommender"
)

// stubEmbedder maps query strings to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("unknown query")
	}
	return v, nil
}

// stubPersonalizer returns a canned ranking.
type stubPersonalizer struct {
	items   []domain.PersonalizedItem
	history []string
}

func (s *stubPersonalizer) Recommend(ctx context.Context, history []string, topK int) []domain.PersonalizedItem {
	s.history = history
	return s.items
}

// newTestService builds a 5-book catalog where A/D and B/E are
// near-duplicate vectors and C stands alone.
func newTestService(t *testing.T) (*RecommendService, *stubPersonalizer) {
	t.Helper()

	books := []domain.Book{
		{ID: "a", Title: "A", Genres: "Science Fiction"},
		{ID: "b", Title: "B", Genres: "Romance"},
		{ID: "c", Title: "C", Genres: "History"},
		{ID: "d", Title: "D", Genres: "Science Fiction"},
		{ID: "e", Title: "E", Genres: "Romance"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.99, 0.01, 0},
		{0.01, 0.99, 0},
	}

	idx, err := recommender.Build(books, vectors)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ledger, err := feedback.NewLedger(filepath.Join(t.TempDir(), "feedback.jsonl"))
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}

	pers := &stubPersonalizer{items: []domain.PersonalizedItem{{Title: "D", Score: 0.9, Genres: "Science Fiction"}}}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"something like A": {1, 0, 0},
	}}

	svc := NewRecommendService(idx, embedder, explain.NewEngine(nil, time.Second), ledger, pers)
	return svc, pers
}

func TestRecommendByTitle_NearDuplicates(t *testing.T) {
	svc, _ := newTestService(t)

	recs, err := svc.RecommendByTitle(context.Background(), "A", 1, 0.3, false)
	if err != nil {
		t.Fatalf("RecommendByTitle failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "D" {
		t.Fatalf("expected D as sole result for A, got %+v", recs)
	}
	if recs[0].Similarity <= 0.7 {
		t.Errorf("near-duplicate similarity too low: %f", recs[0].Similarity)
	}

	recs, err = svc.RecommendByTitle(context.Background(), "B", 1, 0.3, false)
	if err != nil {
		t.Fatalf("RecommendByTitle failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "E" {
		t.Fatalf("expected E as sole result for B, got %+v", recs)
	}
	if recs[0].Similarity <= 0.7 {
		t.Errorf("near-duplicate similarity too low: %f", recs[0].Similarity)
	}
}

func TestRecommendByTitle_UnknownTitle(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecommendByTitle(context.Background(), "Z", 5, 0.3, false)
	if !errors.Is(err, port.ErrTitleNotFound) {
		t.Fatalf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestRecommendByQuery_WithAnnotations(t *testing.T) {
	svc, _ := newTestService(t)

	recs, err := svc.RecommendByQuery(context.Background(), "something like A", 2, 0.3, true)
	if err != nil {
		t.Fatalf("RecommendByQuery failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recs))
	}
	if recs[0].Title != "A" {
		t.Errorf("expected A first, got %s", recs[0].Title)
	}
	for _, r := range recs {
		if r.Explanation == nil {
			t.Errorf("missing explanation for %s", r.Title)
			continue
		}
		if r.Explanation.MatchScore < 0 || r.Explanation.MatchScore > 100 {
			t.Errorf("match score out of range: %d", r.Explanation.MatchScore)
		}
	}
}

func TestExplain_UnknownTitle(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Explain(context.Background(), "q", "Z", 0.5)
	if !errors.Is(err, port.ErrTitleNotFound) {
		t.Fatalf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestPersonalized_ImplicitHistoryFromPositiveFeedback(t *testing.T) {
	svc, pers := newTestService(t)

	for _, title := range []string{"A", "D"} {
		err := svc.RecordFeedback(domain.FeedbackEvent{
			Query:     "q",
			BookTitle: title,
			Feedback:  domain.FeedbackPositive,
		})
		if err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}

	items := svc.Personalized(context.Background(), nil, 5)
	if len(items) != 1 || items[0].Title != "D" {
		t.Fatalf("unexpected personalized items: %+v", items)
	}
	if len(pers.history) != 2 {
		t.Errorf("expected implicit history of 2 titles, got %v", pers.history)
	}
}

func TestFeedbackStats(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		if err := svc.RecordFeedback(domain.FeedbackEvent{Query: "q", BookTitle: "A", Feedback: domain.FeedbackPositive}); err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := svc.RecordFeedback(domain.FeedbackEvent{Query: "q", BookTitle: "B", Feedback: domain.FeedbackNegative}); err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}

	stats, err := svc.FeedbackStats()
	if err != nil {
		t.Fatalf("FeedbackStats failed: %v", err)
	}
	if stats.Total != 5 || stats.Positive != 3 || stats.Negative != 2 {
		t.Errorf("totals wrong: %+v", stats)
	}
	if stats.ByTitle["A"] != 3 || stats.ByTitle["B"] != 2 {
		t.Errorf("per-title counts wrong: %v", stats.ByTitle)
	}
}
