package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"esfhub/internal/port"
)

// MockGateway is a mock implementation of port.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Submit(ctx context.Context, payload interface{}) (*port.GatewayResponse, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayResponse), args.Error(1)
}

func (m *MockGateway) Fetch(ctx context.Context, filter port.FetchFilter) (*port.GatewayResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayResponse), args.Error(1)
}

func (m *MockGateway) Update(ctx context.Context, id string, payload interface{}) (*port.GatewayResponse, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayResponse), args.Error(1)
}

func (m *MockGateway) Delete(ctx context.Context, id string) (*port.GatewayResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayResponse), args.Error(1)
}
