package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a Notifier that only logs failures.
func NewNoopSender() port.Notifier {
	return &noopSender{}
}

func (s *noopSender) NotifyDocumentFailed(_ context.Context, doc *domain.ESFDocument, reason string) error {
	log.Warn().
		Str("document_id", doc.ID.String()).
		Str("document_uuid", doc.DocumentUUID.String()).
		Str("legal_person_tin", doc.LegalPersonTIN).
		Str("reason", reason).
		Msg("[NOOP EMAIL] esf document failed")
	return nil
}
