package line

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

// Client is a thin bearer-authenticated client for the LINE Messaging API.
// Pushes are single attempts: any non-2xx is reported verbatim to the caller
// through DispatchResult, never retried here.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GroupMemberIDs fetches the member id list for a group in a single call.
func (c *Client) GroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var body struct {
		MemberIDs []string `json:"memberIds"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/v2/bot/group/%s/members/ids", groupID), &body); err != nil {
		return nil, err
	}
	return body.MemberIDs, nil
}

// GetProfile fetches a single member profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.GroupProfile, error) {
	var p domain.GroupProfile
	if err := c.getJSON(ctx, "/v2/bot/profile/"+userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Push sends one message payload to the group. It returns a DispatchResult
// carrying the upstream status and body verbatim on rejection; the error is
// non-nil only for transport-level failures where no response exists.
func (c *Client) Push(ctx context.Context, payload interface{}) (*domain.DispatchResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal push payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/bot/message/push", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push message: %w", domain.ErrUpstream)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &domain.DispatchResult{Sent: false, Status: res.StatusCode, Body: string(b)}, nil
	}
	return &domain.DispatchResult{Sent: true, Status: res.StatusCode}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line api call failed: %w", domain.ErrUpstream)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("line resource %s: %w", path, domain.ErrNotFound)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("line api returned %d for %s: %w", res.StatusCode, path, domain.ErrUpstream)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode line response: %w", domain.ErrUpstream)
	}
	return nil
}
