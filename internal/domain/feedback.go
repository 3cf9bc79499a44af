package domain

import "time"

// Feedback polarities. An event carries exactly one of these.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// FeedbackEvent is one immutable user judgment on a recommendation.
// Events are appended to the ledger and never edited or deleted.
type FeedbackEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Query       string    `json:"query"`
	BookID      string    `json:"book_id"`
	BookTitle   string    `json:"book_title"`
	BookAuthors string    `json:"book_authors"`
	Feedback    string    `json:"feedback"`
	SessionID   string    `json:"session_id,omitempty"`
}

// FeedbackStats is the read-time aggregation over a ledger.
type FeedbackStats struct {
	Total    int            `json:"total"`
	Positive int            `json:"positive"`
	Negative int            `json:"negative"`
	ByTitle  map[string]int `json:"by_title"`
	ByQuery  map[string]int `json:"by_query"`
}
