package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-onboard-api/internal/domain"
)

// Client posts event payloads to an n8n webhook. The webhook's response is an
// opaque JSON document owned by the workflow. It is passed through untouched,
// only checked for existence.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Trigger posts the payload and returns the raw response body.
func (c *Client) Trigger(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workflow webhook call failed: %w", domain.ErrUpstream)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("workflow webhook returned %d: %w", res.StatusCode, domain.ErrUpstream)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", domain.ErrUpstream)
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	return json.RawMessage(body), nil
}
