package explain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattear-com/deepshelf/internal/domain"
)

var hitchhiker = domain.Book{
	ID:          "123",
	Title:       "The Hitchhiker's Guide to the Galaxy",
	Authors:     "Douglas Adams",
	Description: "A comedic science fiction series with philosophical undertones about a man travelling through space.",
	Genres:      "Science Fiction, Comedy, Absurdist",
	Tags:        "space, aliens, artificial intelligence, robots, philosophy",
	Rating:      4.5,
}

// fakeAI implements only the Chat side the engine needs.
type fakeAI struct {
	reply string
	err   error
	calls int
}

func (f *fakeAI) ModelName() string { return "fake" }
func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeAI) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestContributionScores_Bounds(t *testing.T) {
	scores := ContributionScores("science fiction about space travelling by douglas adams", hitchhiker)

	if scores.Genres < 0 || scores.Genres > 0.5 {
		t.Errorf("genres contribution out of bounds: %f", scores.Genres)
	}
	if scores.DescriptionKeywords < 0 || scores.DescriptionKeywords > 0.3 {
		t.Errorf("keywords contribution out of bounds: %f", scores.DescriptionKeywords)
	}
	if scores.Authors < 0 || scores.Authors > 0.2 {
		t.Errorf("authors contribution out of bounds: %f", scores.Authors)
	}
	if scores.DescriptionKeywords == 0 {
		t.Errorf("expected shared description keywords to contribute")
	}
	if scores.Authors == 0 {
		t.Errorf("expected author overlap to contribute")
	}
}

func TestContributionScores_NoOverlap(t *testing.T) {
	scores := ContributionScores("gardening handbook", hitchhiker)
	if scores.Sum() != 0 {
		t.Errorf("expected zero contributions, got %+v", scores)
	}
}

func TestConfidenceLadder(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		scores     domain.ContributionScores
		want       string
	}{
		{"low", 0.2, domain.ContributionScores{}, domain.ConfidenceLow},
		{"medium", 0.6, domain.ContributionScores{}, domain.ConfidenceMedium},
		{"high", 0.8, domain.ContributionScores{}, domain.ConfidenceHigh},
		{"boost to very high", 0.8, domain.ContributionScores{Genres: 0.5, DescriptionKeywords: 0.2}, domain.ConfidenceVeryHigh},
		{"boost low to medium", 0.2, domain.ContributionScores{Genres: 0.35}, domain.ConfidenceMedium},
		{"boundary 0.7 stays medium", 0.7, domain.ContributionScores{}, domain.ConfidenceMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidence(tt.similarity, tt.scores); got != tt.want {
				t.Errorf("confidence(%f, %+v) = %s, want %s", tt.similarity, tt.scores, got, tt.want)
			}
		})
	}
}

func TestExplain_TemplateFallbackWithoutProvider(t *testing.T) {
	e := NewEngine(nil, time.Second)

	exp := e.Explain(context.Background(), "comedic science fiction about space", hitchhiker, 0.75)

	if exp.MatchScore != 75 {
		t.Errorf("match score = %d, want 75", exp.MatchScore)
	}
	if !strings.Contains(exp.Summary, "good match for your interest in") {
		t.Errorf("template summary missing lead-in: %q", exp.Summary)
	}
	if !strings.Contains(exp.Summary, "has keywords in description like") {
		t.Errorf("expected keyword feature in summary: %q", exp.Summary)
	}
}

func TestExplain_GenericClosingWhenNothingSignificant(t *testing.T) {
	e := NewEngine(nil, time.Second)

	exp := e.Explain(context.Background(), "gardening handbook", hitchhiker, 0.4)

	if len(exp.MatchingFeatures) != 0 {
		t.Errorf("expected no matching features, got %v", exp.MatchingFeatures)
	}
	if !strings.Contains(exp.Summary, "Its content aligns well with your query.") {
		t.Errorf("expected generic closing sentence, got %q", exp.Summary)
	}
}

func TestExplain_PrefersGenerativeSummary(t *testing.T) {
	ai := &fakeAI{reply: "It shares the comedic space-opera tone you asked for."}
	e := NewEngine(ai, time.Second)

	exp := e.Explain(context.Background(), "comedic science fiction", hitchhiker, 0.8)

	if exp.Summary != ai.reply {
		t.Errorf("expected generative summary, got %q", exp.Summary)
	}
	if ai.calls != 1 {
		t.Errorf("expected one chat call, got %d", ai.calls)
	}
}

func TestExplain_FallsBackWhenSummarizerFails(t *testing.T) {
	ai := &fakeAI{err: errors.New("model unavailable")}
	e := NewEngine(ai, time.Second)

	exp := e.Explain(context.Background(), "comedic science fiction about space", hitchhiker, 0.8)

	if !strings.Contains(exp.Summary, "good match for your interest in") {
		t.Errorf("expected template fallback, got %q", exp.Summary)
	}
	// Confidence comes from scores, not from which path produced the text.
	if exp.Confidence != domain.ConfidenceHigh && exp.Confidence != domain.ConfidenceVeryHigh {
		t.Errorf("unexpected confidence %s", exp.Confidence)
	}
}
