package port

import (
	"context"
	"encoding/json"
)

// GatewayResponse is a successful (2xx) GNS answer.
type GatewayResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// FetchFilter narrows a GNS fetch. An empty ExchangeCode uses the configured one.
type FetchFilter struct {
	ExchangeCode string
	Params       map[string]string
}

// Gateway is the external tax authority gateway. Every method makes exactly
// one HTTP call and returns *domain.GatewayError on failure.
type Gateway interface {
	Submit(ctx context.Context, payload interface{}) (*GatewayResponse, error)
	Fetch(ctx context.Context, filter FetchFilter) (*GatewayResponse, error)
	Update(ctx context.Context, id string, payload interface{}) (*GatewayResponse, error)
	Delete(ctx context.Context, id string) (*GatewayResponse, error)
}
