package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/mattear-com/deepshelf/internal/domain"
)

// Ledger is an append-only JSONL log of user feedback events. Prior
// entries are never rewritten. Appends are serialized with a process-local
// mutex plus a file-level exclusive lock, so concurrent writers (goroutines
// or processes) cannot interleave records.
type Ledger struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewLedger creates a ledger backed by the given file, creating parent
// directories as needed.
func NewLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create feedback dir: %w", err)
	}
	return &Ledger{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Record appends one event to the ledger. A zero timestamp is filled with
// the current time; the polarity must be positive or negative.
func (l *Ledger) Record(event domain.FeedbackEvent) error {
	if event.Feedback != domain.FeedbackPositive && event.Feedback != domain.FeedbackNegative {
		return fmt.Errorf("invalid feedback polarity %q", event.Feedback)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal feedback event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("lock feedback file: %w", err)
	}
	defer l.lock.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append feedback event: %w", err)
	}
	return nil
}

// ReadAll returns every event in append order. Unparsable lines — such as
// a trailing partial line left by a crash mid-append — are skipped. A
// missing file reads as an empty ledger.
func (l *Ledger) ReadAll() ([]domain.FeedbackEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	var events []domain.FeedbackEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event domain.FeedbackEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan feedback file: %w", err)
	}
	return events, nil
}

// Aggregate reduces events to polarity totals plus per-title and per-query
// counts. Pure reduction, no hidden state.
func Aggregate(events []domain.FeedbackEvent) domain.FeedbackStats {
	stats := domain.FeedbackStats{
		ByTitle: make(map[string]int),
		ByQuery: make(map[string]int),
	}
	for _, e := range events {
		stats.Total++
		switch e.Feedback {
		case domain.FeedbackPositive:
			stats.Positive++
		case domain.FeedbackNegative:
			stats.Negative++
		}
		if e.BookTitle != "" {
			stats.ByTitle[e.BookTitle]++
		}
		if e.Query != "" {
			stats.ByQuery[e.Query]++
		}
	}
	return stats
}

// PositiveTitles returns the most recent distinct positively-rated titles,
// newest first, capped at limit. Used as implicit personalization history
// when a caller supplies none.
func PositiveTitles(events []domain.FeedbackEvent, limit int) []string {
	var titles []string
	seen := make(map[string]bool)
	for i := len(events) - 1; i >= 0 && len(titles) < limit; i-- {
		e := events[i]
		if e.Feedback != domain.FeedbackPositive || e.BookTitle == "" || seen[e.BookTitle] {
			continue
		}
		titles = append(titles, e.BookTitle)
		seen[e.BookTitle] = true
	}
	return titles
}
