package gns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"esfhub/internal/config"
	"esfhub/internal/domain"
	"esfhub/internal/port"
)

const defaultTimeout = 10 * time.Second

// Client implements port.Gateway against the GNS tax authority gateway.
// Every call is a single attempt bounded by the configured timeout.
type Client struct {
	cfg    config.GNSConfig
	client *http.Client
}

// NewClient creates a gateway client from the GNS config section.
func NewClient(cfg config.GNSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

var _ port.Gateway = (*Client)(nil)

func (c *Client) Submit(ctx context.Context, payload interface{}) (*port.GatewayResponse, error) {
	return c.do(ctx, "submit", http.MethodPost, c.cfg.URL(c.cfg.SubmitPath), payload)
}

func (c *Client) Fetch(ctx context.Context, filter port.FetchFilter) (*port.GatewayResponse, error) {
	exchangeCode := filter.ExchangeCode
	if exchangeCode == "" {
		exchangeCode = c.cfg.ExchangeCode
	}

	q := url.Values{}
	for k, v := range filter.Params {
		q.Set(k, v)
	}
	if exchangeCode != "" {
		q.Set("exchangeCode", exchangeCode)
	}

	target := c.cfg.URL(c.cfg.FetchPath)
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return c.do(ctx, "fetch", http.MethodGet, target, nil)
}

func (c *Client) Update(ctx context.Context, id string, payload interface{}) (*port.GatewayResponse, error) {
	return c.do(ctx, "update", http.MethodPut, c.cfg.URL(c.cfg.UpdatePath)+"/"+url.PathEscape(id), payload)
}

func (c *Client) Delete(ctx context.Context, id string) (*port.GatewayResponse, error) {
	return c.do(ctx, "delete", http.MethodDelete, c.cfg.URL(c.cfg.DeletePath)+"/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, op, method, target string, payload interface{}) (*port.GatewayResponse, error) {
	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("gns %s: marshaling request: %w", op, err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("gns %s: creating request: %w", op, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewGatewayTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewGatewayTransportError(op, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewGatewayStatusError(op, resp.StatusCode, string(respBody))
	}

	return &port.GatewayResponse{StatusCode: resp.StatusCode, Body: normalizeBody(respBody)}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Road-Client", c.cfg.XRoadClient)
	req.Header.Set("ClientUUID", c.cfg.ClientUUID)
	req.Header.Set("Authorization", c.cfg.Authorization)
	req.Header.Set("USER-TIN", c.cfg.UserTIN)
}

// normalizeBody keeps JSON bodies as-is and quotes anything else so the
// response can always be embedded in a JSON envelope.
func normalizeBody(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	quoted, _ := json.Marshal(string(b))
	return json.RawMessage(quoted)
}
