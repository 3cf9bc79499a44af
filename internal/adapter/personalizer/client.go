package personalizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mattear-com/deepshelf/internal/domain"
)

// Client talks to the out-of-process personalization service. It is a
// strict graceful-degradation contract: any transport failure, non-2xx
// response, or malformed payload yields an empty list, never an error, and
// each call is attempted independently — no breaker state, no retries. The
// timeout is generous because the backing service runs slow CPU inference;
// retrying on top of it would compound tail latency.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a personalization client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Recommend translates a user's interaction history into ranked titles.
// An empty history or any service failure returns an empty list.
func (c *Client) Recommend(ctx context.Context, history []string, topK int) []domain.PersonalizedItem {
	if len(history) == 0 {
		return []domain.PersonalizedItem{}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"user_history": history,
		"top_k":        topK,
	})
	if err != nil {
		slog.Warn("personalizer payload not marshalable", "error", err)
		return []domain.PersonalizedItem{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/personalize/recommend", bytes.NewReader(payload))
	if err != nil {
		slog.Warn("personalizer request not created", "error", err)
		return []domain.PersonalizedItem{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("personalizer unreachable", "error", err)
		return []domain.PersonalizedItem{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("personalizer returned non-success", "status", resp.StatusCode)
		return []domain.PersonalizedItem{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("personalizer response unreadable", "error", err)
		return []domain.PersonalizedItem{}
	}

	var items []domain.PersonalizedItem
	if err := json.Unmarshal(body, &items); err != nil {
		slog.Warn("personalizer response malformed", "error", err)
		return []domain.PersonalizedItem{}
	}
	if items == nil {
		items = []domain.PersonalizedItem{}
	}
	return items
}
