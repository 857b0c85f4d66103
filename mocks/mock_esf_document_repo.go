package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
)

// MockESFDocumentRepo is a mock implementation of port.ESFDocumentRepository.
type MockESFDocumentRepo struct {
	mock.Mock
}

func (m *MockESFDocumentRepo) Create(ctx context.Context, doc *domain.ESFDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockESFDocumentRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.ESFDocument, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ESFDocument), args.Error(1)
}

func (m *MockESFDocumentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.ESFDocument, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ESFDocument), args.Int(1), args.Error(2)
}

// SettleDraft runs fn on the returned document, so tests can inspect the
// state fn left on it.
func (m *MockESFDocumentRepo) SettleDraft(ctx context.Context, ownerID, id uuid.UUID, fn func(ctx context.Context, doc *domain.ESFDocument) error) error {
	args := m.Called(ctx, ownerID, id)
	if doc, ok := args.Get(0).(*domain.ESFDocument); ok && doc != nil {
		if err := fn(ctx, doc); err != nil {
			return err
		}
	}
	return args.Error(1)
}
