package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

// InvoiceService manages the canonical invoice records.
type InvoiceService interface {
	Create(ctx context.Context, ext *domain.ExternalInvoice) (*domain.Invoice, error)
	// Upsert creates or overwrites the invoice keyed by its document uuid.
	Upsert(ctx context.Context, ext *domain.ExternalInvoice) (*domain.Invoice, bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, id int64, ext *domain.ExternalInvoice) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) error
	// Send submits the invoice to GNS and relays the gateway answer.
	Send(ctx context.Context, id int64) (*port.GatewayResponse, error)
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	refRepo     port.ReferenceRepository
	uow         port.UnitOfWork
	gateway     port.Gateway
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	refRepo port.ReferenceRepository,
	uow port.UnitOfWork,
	gateway port.Gateway,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		refRepo:     refRepo,
		uow:         uow,
		gateway:     gateway,
	}
}

func (s *invoiceService) Create(ctx context.Context, ext *domain.ExternalInvoice) (*domain.Invoice, error) {
	inv, err := buildInvoice(ext)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, stores port.SyncStores) error {
		refs, err := resolveInvoiceRefs(ctx, stores.References, ext)
		if err != nil {
			return err
		}
		inv.ApplyRefs(refs)
		return stores.Invoices.Create(ctx, inv)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateInvoice) {
			return nil, err
		}
		return nil, fmt.Errorf("invoiceService.Create: %w", err)
	}

	log.Info().Int64("invoice_id", inv.ID).Str("document_uuid", inv.DocumentUUID.String()).
		Msg("invoiceService.Create: invoice created")
	return inv, nil
}

func (s *invoiceService) Upsert(ctx context.Context, ext *domain.ExternalInvoice) (*domain.Invoice, bool, error) {
	inv, err := buildInvoice(ext)
	if err != nil {
		return nil, false, err
	}

	var inserted bool
	err = s.uow.Do(ctx, func(ctx context.Context, stores port.SyncStores) error {
		var err error
		inserted, err = upsertInvoice(ctx, stores, inv, ext)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("invoiceService.Upsert: %w", err)
	}
	return inv, inserted, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, offset, limit)
}

func (s *invoiceService) Update(ctx context.Context, id int64, ext *domain.ExternalInvoice) (*domain.Invoice, error) {
	var updated *domain.Invoice
	err := s.uow.Do(ctx, func(ctx context.Context, stores port.SyncStores) error {
		existing, err := stores.Invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(ext.DocumentUUID) == "" {
			ext.DocumentUUID = existing.DocumentUUID.String()
		}
		inv, err := buildInvoice(ext)
		if err != nil {
			return err
		}
		if inv.DocumentUUID != existing.DocumentUUID {
			return fmt.Errorf("%w: documentUuid cannot be changed", domain.ErrInvalidInvoice)
		}

		refs, err := resolveInvoiceRefs(ctx, stores.References, ext)
		if err != nil {
			return err
		}
		inv.ApplyRefs(refs)
		inv.ID = existing.ID
		inv.CreatedAt = existing.CreatedAt
		if err := stores.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) || errors.Is(err, domain.ErrInvalidInvoice) {
			return nil, err
		}
		return nil, fmt.Errorf("invoiceService.Update: %w", err)
	}
	return updated, nil
}

func (s *invoiceService) Delete(ctx context.Context, id int64) error {
	return s.invoiceRepo.Delete(ctx, id)
}

func (s *invoiceService) Send(ctx context.Context, id int64) (*port.GatewayResponse, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.loadRefs(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.Send: %w", err)
	}
	person, ok := refs[domain.RefLegalPerson]
	if !ok || person.Key == "" {
		return nil, domain.ErrMissingTIN
	}

	resp, err := s.gateway.Submit(ctx, domain.SubmitRequest{
		DocumentUUID:   inv.DocumentUUID.String(),
		LegalPersonTIN: person.Key,
		Data:           domain.NewExternalInvoice(inv, refs),
	})
	if err != nil {
		log.Warn().Err(err).Int64("invoice_id", inv.ID).Msg("invoiceService.Send: gateway rejected invoice")
		return nil, err
	}
	log.Info().Int64("invoice_id", inv.ID).Msg("invoiceService.Send: invoice submitted")
	return resp, nil
}

// loadRefs fetches every reference the invoice links to. Dangling links are skipped.
func (s *invoiceService) loadRefs(ctx context.Context, inv *domain.Invoice) (map[domain.RefKind]*domain.Reference, error) {
	links := inv.Refs()
	out := make(map[domain.RefKind]*domain.Reference)
	for _, kind := range domain.RefKinds() {
		id := links.Get(kind)
		if id == nil {
			continue
		}
		rec, err := s.refRepo.GetByID(ctx, kind, *id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[kind] = rec
	}
	return out, nil
}

// upsertInvoice resolves the references of ext and writes inv keyed by its
// document uuid, all through the given stores.
func upsertInvoice(ctx context.Context, stores port.SyncStores, inv *domain.Invoice, ext *domain.ExternalInvoice) (bool, error) {
	refs, err := resolveInvoiceRefs(ctx, stores.References, ext)
	if err != nil {
		return false, err
	}
	inv.ApplyRefs(refs)
	return stores.Invoices.Upsert(ctx, inv)
}

// buildInvoice maps the external record onto the invoice columns. Reference
// links are filled in later by resolution.
func buildInvoice(ext *domain.ExternalInvoice) (*domain.Invoice, error) {
	if ext == nil {
		return nil, fmt.Errorf("%w: empty record", domain.ErrInvalidInvoice)
	}
	docUUID, err := uuid.Parse(strings.TrimSpace(ext.DocumentUUID))
	if err != nil {
		return nil, fmt.Errorf("%w: documentUuid %q is not a uuid", domain.ErrInvalidInvoice, ext.DocumentUUID)
	}
	if ext.TotalAmount == nil {
		return nil, fmt.Errorf("%w: totalAmount is required", domain.ErrInvalidInvoice)
	}

	return &domain.Invoice{
		DocumentUUID:         docUUID,
		TotalAmount:          ext.TotalAmount.Round(2),
		CreatedDate:          ext.CreatedDate.TimePtr(),
		DeliveryDate:         ext.DeliveryDate.TimePtr(),
		InvoiceDate:          ext.InvoiceDate.TimePtr(),
		OwnedCrmReceiptCode:  ext.OwnedCrmReceiptCode,
		InvoiceNumber:        ext.InvoiceNumber,
		Number:               ext.Number,
		Note:                 ext.Note,
		CorrectedReceiptUUID: ext.CorrectedReceiptUUID,
		IsResident:           domain.ParseIsResident(ext.IsResident),
	}, nil
}

// decodeInvoiceList accepts either a bare JSON array or an object wrapping the
// list under one of the keys GNS has been seen to use.
func decodeInvoiceList(body json.RawMessage) ([]domain.ExternalInvoice, error) {
	var list []domain.ExternalInvoice
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding gateway invoice list: %w", err)
	}
	for _, key := range []string{"content", "items", "data", "invoices"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decoding gateway invoice list %q: %w", key, err)
		}
		return list, nil
	}
	return nil, errors.New("decoding gateway invoice list: no invoice array in response")
}
