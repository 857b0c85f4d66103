package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"esfhub/internal/config"
	"esfhub/internal/domain"
	"esfhub/internal/port"
)

const mePath = "/api/v1/auth/me"

// Client resolves bearer tokens by asking the auth service who they belong to.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an auth service client. A zero timeout defaults to 5s.
func NewClient(cfg config.AuthConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ port.IdentityResolver = (*Client)(nil)

type meResponse struct {
	Success bool             `json:"success"`
	Data    *domain.Identity `json:"data"`
}

func (c *Client) ResolveIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("authclient: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUnauthorized
	}

	var body meResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Data == nil {
		return nil, domain.ErrUnauthorized
	}
	return body.Data, nil
}
