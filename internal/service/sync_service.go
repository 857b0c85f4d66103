package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

// SyncResult is the outcome of a batch synchronization. Saved counts distinct
// invoice rows committed, so it is zero whenever Status is failed. Created and
// Updated count upserts, so a document repeated within one batch adds to
// Updated but not to Saved.
type SyncResult struct {
	Status      domain.SyncStatus `json:"status"`
	Attempted   int               `json:"attempted"`
	Saved       int               `json:"saved"`
	Created     int               `json:"created"`
	Updated     int               `json:"updated"`
	FailedIndex *int              `json:"failed_index,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// SyncService mirrors GNS invoices into the local store.
type SyncService interface {
	// SyncBatch resolves and upserts every invoice in one transaction. On any
	// failure nothing is persisted and a *domain.SyncError is returned along
	// with the failed result.
	SyncBatch(ctx context.Context, invoices []domain.ExternalInvoice) (*SyncResult, error)
	// PullAndSync fetches invoices from GNS and runs SyncBatch on them.
	PullAndSync(ctx context.Context, filter port.FetchFilter) (*SyncResult, error)
}

type syncService struct {
	uow     port.UnitOfWork
	gateway port.Gateway
}

// NewSyncService creates a new SyncService implementation.
func NewSyncService(uow port.UnitOfWork, gateway port.Gateway) SyncService {
	return &syncService{uow: uow, gateway: gateway}
}

func (s *syncService) SyncBatch(ctx context.Context, invoices []domain.ExternalInvoice) (*SyncResult, error) {
	result := &SyncResult{Attempted: len(invoices)}

	built := make([]*domain.Invoice, len(invoices))
	for i := range invoices {
		inv, err := buildInvoice(&invoices[i])
		if err != nil {
			return s.fail(result, &domain.SyncError{Index: i, DocumentUUID: invoices[i].DocumentUUID, Err: err})
		}
		built[i] = inv
	}

	var created, updated int
	err := s.uow.Do(ctx, func(ctx context.Context, stores port.SyncStores) error {
		created, updated = 0, 0
		for i := range invoices {
			inserted, err := upsertInvoice(ctx, stores, built[i], &invoices[i])
			if err != nil {
				return &domain.SyncError{Index: i, DocumentUUID: invoices[i].DocumentUUID, Err: err}
			}
			if inserted {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		var syncErr *domain.SyncError
		if !errors.As(err, &syncErr) {
			syncErr = &domain.SyncError{Index: -1, Err: err}
		}
		return s.fail(result, syncErr)
	}

	result.Status = domain.SyncStatusOK
	result.Saved = distinctDocuments(built)
	result.Created = created
	result.Updated = updated
	log.Info().Int("attempted", result.Attempted).Int("created", created).Int("updated", updated).
		Msg("syncService.SyncBatch: batch committed")
	return result, nil
}

func (s *syncService) PullAndSync(ctx context.Context, filter port.FetchFilter) (*SyncResult, error) {
	resp, err := s.gateway.Fetch(ctx, filter)
	if err != nil {
		return nil, err
	}
	invoices, err := decodeInvoiceList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("syncService.PullAndSync: %w", err)
	}
	log.Info().Int("count", len(invoices)).Msg("syncService.PullAndSync: fetched invoices from gns")
	return s.SyncBatch(ctx, invoices)
}

func (s *syncService) fail(result *SyncResult, syncErr *domain.SyncError) (*SyncResult, error) {
	result.Status = domain.SyncStatusFailed
	result.Saved = 0
	result.Created = 0
	result.Updated = 0
	if syncErr.Index >= 0 {
		idx := syncErr.Index
		result.FailedIndex = &idx
	}
	result.Error = syncErr.Err.Error()
	log.Error().Err(syncErr.Err).Int("failed_index", syncErr.Index).Str("document_uuid", syncErr.DocumentUUID).
		Int("attempted", result.Attempted).Msg("syncService.SyncBatch: batch rolled back")
	return result, syncErr
}

func distinctDocuments(invoices []*domain.Invoice) int {
	seen := make(map[uuid.UUID]struct{}, len(invoices))
	for _, inv := range invoices {
		seen[inv.DocumentUUID] = struct{}{}
	}
	return len(seen)
}
