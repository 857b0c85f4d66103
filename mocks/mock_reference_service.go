package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
)

// MockReferenceService is a mock implementation of service.ReferenceService.
type MockReferenceService struct {
	mock.Mock
}

func (m *MockReferenceService) Resolve(ctx context.Context, ref *domain.Reference) (*domain.Reference, bool, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Reference), args.Bool(1), args.Error(2)
}

func (m *MockReferenceService) List(ctx context.Context, kind domain.RefKind, offset, limit int) ([]domain.Reference, int, error) {
	args := m.Called(ctx, kind, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Reference), args.Int(1), args.Error(2)
}
