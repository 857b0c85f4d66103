package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
)

// MockIdentityResolver is a mock implementation of port.IdentityResolver.
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) ResolveIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}
