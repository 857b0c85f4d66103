package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
	"esfhub/internal/service"
)

// MockESFService is a mock implementation of service.ESFService.
type MockESFService struct {
	mock.Mock
}

func (m *MockESFService) Create(ctx context.Context, caller *domain.Identity, input service.CreateESFInput) (*domain.ESFDocument, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ESFDocument), args.Error(1)
}

func (m *MockESFService) GetByID(ctx context.Context, caller *domain.Identity, id uuid.UUID) (*domain.ESFDocument, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ESFDocument), args.Error(1)
}

func (m *MockESFService) List(ctx context.Context, caller *domain.Identity, offset, limit int) ([]domain.ESFDocument, int, error) {
	args := m.Called(ctx, caller, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ESFDocument), args.Int(1), args.Error(2)
}

func (m *MockESFService) Send(ctx context.Context, caller *domain.Identity, id uuid.UUID) (*service.SendESFResult, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SendESFResult), args.Error(1)
}
