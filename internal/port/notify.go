package port

import (
	"context"

	"esfhub/internal/domain"
)

// Notifier reports ESF documents that GNS rejected.
type Notifier interface {
	NotifyDocumentFailed(ctx context.Context, doc *domain.ESFDocument, reason string) error
}
