package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDocumentFailed(ctx context.Context, doc *domain.ESFDocument, reason string) error {
	args := m.Called(ctx, doc, reason)
	return args.Error(0)
}
