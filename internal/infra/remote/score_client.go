// Package remote talks to a quiz backend over HTTP: the score API and a static
// catalog host.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz-widget-service/internal/domain"
)

// ScoreClient reports attempts to a score API (this service's or the PHP/Node/Flask
// reference backends) and reads stats back.
type ScoreClient struct {
	baseURL string
	suffix  string
	client  *http.Client
}

// ClientOption customises a ScoreClient.
type ClientOption func(*ScoreClient)

// WithPHPPaths targets save-score.php and quiz-stats.php.
func WithPHPPaths() ClientOption {
	return func(c *ScoreClient) { c.suffix = ".php" }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ScoreClient) { c.client = client }
}

// NewScoreClient constructs a client for the given API base URL.
func NewScoreClient(baseURL string, timeout time.Duration, opts ...ClientOption) *ScoreClient {
	c := &ScoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SaveScore posts a submission to /save-score.
func (c *ScoreClient) SaveScore(ctx context.Context, sub domain.ScoreSubmission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/save-score"+c.suffix, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return decodeHTTPError(status, body)
	}
	return nil
}

// Stats fetches /quiz-stats for quizID.
func (c *ScoreClient) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	endpoint := c.baseURL + "/quiz-stats" + c.suffix + "?quizId=" + url.QueryEscape(quizID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.QuizStats{}, err
	}
	body, status, err := c.do(req)
	if err != nil {
		return domain.QuizStats{}, err
	}
	if status != http.StatusOK {
		return domain.QuizStats{}, decodeHTTPError(status, body)
	}
	var st domain.QuizStats
	if err := json.Unmarshal(body, &st); err != nil {
		return domain.QuizStats{}, fmt.Errorf("decode stats: %w", err)
	}
	return st, nil
}

func (c *ScoreClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeHTTPError(status int, body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("score api: %s (status %d)", resp.Error, status)
	}
	return fmt.Errorf("score api: unexpected status %d", status)
}
