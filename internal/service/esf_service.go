package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

// CreateESFInput is the DTO for creating an ESF document.
type CreateESFInput struct {
	DocumentUUID   *uuid.UUID        `json:"document_uuid"`
	LegalPersonTIN string            `json:"legal_person_tin"`
	Payload        domain.ESFPayload `json:"payload" binding:"required"`
}

// SendESFResult is returned by a successful send.
type SendESFResult struct {
	Document *domain.ESFDocument `json:"document"`
	Gateway  json.RawMessage     `json:"gateway"`
}

// ESFService drives ESF documents through draft, sent and failed.
type ESFService interface {
	Create(ctx context.Context, caller *domain.Identity, input CreateESFInput) (*domain.ESFDocument, error)
	GetByID(ctx context.Context, caller *domain.Identity, id uuid.UUID) (*domain.ESFDocument, error)
	List(ctx context.Context, caller *domain.Identity, offset, limit int) ([]domain.ESFDocument, int, error)
	// Send submits a draft once. On gateway failure the document is marked
	// failed and the gateway error is returned.
	Send(ctx context.Context, caller *domain.Identity, id uuid.UUID) (*SendESFResult, error)
}

type esfService struct {
	docRepo  port.ESFDocumentRepository
	gateway  port.Gateway
	storage  port.ObjectStorage
	notifier port.Notifier
}

// NewESFService creates a new ESFService implementation. storage and
// notifier may be nil.
func NewESFService(
	docRepo port.ESFDocumentRepository,
	gateway port.Gateway,
	storage port.ObjectStorage,
	notifier port.Notifier,
) ESFService {
	return &esfService{
		docRepo:  docRepo,
		gateway:  gateway,
		storage:  storage,
		notifier: notifier,
	}
}

func (s *esfService) Create(ctx context.Context, caller *domain.Identity, input CreateESFInput) (*domain.ESFDocument, error) {
	if err := input.Payload.Validate(); err != nil {
		return nil, err
	}

	tin := strings.TrimSpace(input.LegalPersonTIN)
	if tin == "" && caller.TIN != nil {
		tin = strings.TrimSpace(*caller.TIN)
	}
	if tin == "" {
		return nil, domain.ErrMissingTIN
	}

	docUUID := uuid.New()
	if input.DocumentUUID != nil && *input.DocumentUUID != uuid.Nil {
		docUUID = *input.DocumentUUID
	}

	doc := &domain.ESFDocument{
		DocumentUUID:   docUUID,
		OwnerID:        caller.ID,
		LegalPersonTIN: tin,
		Payload:        input.Payload,
		Status:         domain.ESFStatusDraft,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrDuplicateDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("esfService.Create: %w", err)
	}

	log.Info().Str("document_id", doc.ID.String()).Str("owner_id", caller.ID.String()).
		Msg("esfService.Create: draft created")
	return doc, nil
}

func (s *esfService) GetByID(ctx context.Context, caller *domain.Identity, id uuid.UUID) (*domain.ESFDocument, error) {
	return s.docRepo.GetByID(ctx, caller.ID, id)
}

func (s *esfService) List(ctx context.Context, caller *domain.Identity, offset, limit int) ([]domain.ESFDocument, int, error) {
	return s.docRepo.ListByOwner(ctx, caller.ID, offset, limit)
}

func (s *esfService) Send(ctx context.Context, caller *domain.Identity, id uuid.UUID) (*SendESFResult, error) {
	var (
		settled *domain.ESFDocument
		resp    *port.GatewayResponse
		gwErr   error
	)
	err := s.docRepo.SettleDraft(ctx, caller.ID, id, func(ctx context.Context, doc *domain.ESFDocument) error {
		if doc.Status != domain.ESFStatusDraft {
			return domain.ErrDocumentNotDraft
		}
		settled = doc

		resp, gwErr = s.gateway.Submit(ctx, domain.SubmitRequest{
			DocumentUUID:   doc.DocumentUUID.String(),
			LegalPersonTIN: doc.LegalPersonTIN,
			Data:           doc.Payload,
		})
		if gwErr != nil {
			msg := gwErr.Error()
			doc.Status = domain.ESFStatusFailed
			doc.ErrorMessage = &msg
			return nil
		}

		now := time.Now().UTC()
		doc.Status = domain.ESFStatusSent
		doc.SentAt = &now
		doc.ErrorMessage = nil
		if gnsID := extractGNSID(resp.Body); gnsID != "" {
			doc.GNSID = &gnsID
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) || errors.Is(err, domain.ErrDocumentNotDraft) {
			return nil, err
		}
		if gwErr != nil {
			return nil, fmt.Errorf("esfService.Send marking failed: %w", err)
		}
		return nil, fmt.Errorf("esfService.Send: %w", err)
	}

	if gwErr != nil {
		s.notifyFailed(context.WithoutCancel(ctx), settled, gwErr)
		return nil, gwErr
	}

	log.Info().Str("document_id", settled.ID.String()).Str("document_uuid", settled.DocumentUUID.String()).
		Msg("esfService.Send: document sent")
	s.archive(ctx, settled, resp.Body)

	return &SendESFResult{Document: settled, Gateway: resp.Body}, nil
}

func (s *esfService) notifyFailed(ctx context.Context, doc *domain.ESFDocument, gwErr error) {
	log.Warn().Err(gwErr).Str("document_id", doc.ID.String()).Msg("esfService.Send: gateway call failed")
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDocumentFailed(ctx, doc, gwErr.Error()); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("esfService.Send: failure notification not sent")
	}
}

// archive stores the sent payload together with the gateway answer. Archive
// failures are logged and never affect the send outcome.
func (s *esfService) archive(ctx context.Context, doc *domain.ESFDocument, gatewayBody json.RawMessage) {
	if s.storage == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"document": doc,
		"gateway":  gatewayBody,
	})
	if err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("esfService.archive: marshal failed")
		return
	}
	key := fmt.Sprintf("%s/%s.json", doc.OwnerID, doc.DocumentUUID)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
	}); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("esfService.archive: upload failed")
	}
}

func extractGNSID(body json.RawMessage) string {
	var resp domain.SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.GNSID
}
