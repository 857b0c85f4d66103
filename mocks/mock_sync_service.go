package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
	"esfhub/internal/port"
	"esfhub/internal/service"
)

// MockSyncService is a mock implementation of service.SyncService.
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncBatch(ctx context.Context, invoices []domain.ExternalInvoice) (*service.SyncResult, error) {
	args := m.Called(ctx, invoices)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func (m *MockSyncService) PullAndSync(ctx context.Context, filter port.FetchFilter) (*service.SyncResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}
