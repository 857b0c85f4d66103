package service

import (
	"context"
	"fmt"
	"strings"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

// ReferenceService resolves and lists reference data mirrored from GNS.
type ReferenceService interface {
	// Resolve returns the record for ref's natural key, creating it on first sight.
	Resolve(ctx context.Context, ref *domain.Reference) (*domain.Reference, bool, error)
	List(ctx context.Context, kind domain.RefKind, offset, limit int) ([]domain.Reference, int, error)
}

type referenceService struct {
	refRepo port.ReferenceRepository
}

// NewReferenceService creates a new ReferenceService implementation.
func NewReferenceService(refRepo port.ReferenceRepository) ReferenceService {
	return &referenceService{refRepo: refRepo}
}

func (s *referenceService) Resolve(ctx context.Context, ref *domain.Reference) (*domain.Reference, bool, error) {
	return resolveReference(ctx, s.refRepo, ref)
}

func (s *referenceService) List(ctx context.Context, kind domain.RefKind, offset, limit int) ([]domain.Reference, int, error) {
	if _, err := domain.LookupRefKind(kind); err != nil {
		return nil, 0, err
	}
	return s.refRepo.List(ctx, kind, offset, limit)
}

func resolveReference(ctx context.Context, refs port.ReferenceRepository, ref *domain.Reference) (*domain.Reference, bool, error) {
	if _, err := domain.LookupRefKind(ref.Kind); err != nil {
		return nil, false, err
	}
	ref.Key = strings.TrimSpace(ref.Key)
	if ref.Key == "" {
		return nil, false, nil
	}
	rec, created, err := refs.GetOrCreate(ctx, ref)
	if err != nil {
		return nil, false, fmt.Errorf("resolving %s %q: %w", ref.Kind, ref.Key, err)
	}
	return rec, created, nil
}

// resolveInvoiceRefs resolves every reference the external invoice carries,
// in a fixed kind order.
func resolveInvoiceRefs(ctx context.Context, refs port.ReferenceRepository, ext *domain.ExternalInvoice) (domain.InvoiceRefs, error) {
	var out domain.InvoiceRefs
	seeds := ext.ReferenceSeeds()
	for _, kind := range domain.RefKinds() {
		seed, ok := seeds[kind]
		if !ok {
			continue
		}
		rec, _, err := resolveReference(ctx, refs, seed)
		if err != nil {
			return out, err
		}
		if rec != nil {
			out.Set(kind, rec.ID)
		}
	}
	return out, nil
}
