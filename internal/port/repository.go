package port

import (
	"context"

	"github.com/google/uuid"

	"esfhub/internal/domain"
)

// UserRepository defines the contract for auth service account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ReferenceRepository persists the reference tables described by
// domain.RefDescriptors. Records are never updated or deleted.
type ReferenceRepository interface {
	// GetOrCreate inserts ref unless a row with the same natural key already
	// exists, in which case the existing row is returned with created=false.
	GetOrCreate(ctx context.Context, ref *domain.Reference) (rec *domain.Reference, created bool, err error)
	GetByID(ctx context.Context, kind domain.RefKind, id int64) (*domain.Reference, error)
	List(ctx context.Context, kind domain.RefKind, offset, limit int) ([]domain.Reference, int, error)
}

// InvoiceRepository defines the contract for canonical invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	// Upsert writes inv keyed by DocumentUUID and refreshes inv from the stored
	// row. inserted reports whether a new row was created.
	Upsert(ctx context.Context, inv *domain.Invoice) (inserted bool, err error)
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByDocumentUUID(ctx context.Context, documentUUID uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id int64) error
}

// SyncStores are the repositories bound to one unit of work.
type SyncStores struct {
	References ReferenceRepository
	Invoices   InvoiceRepository
}

// UnitOfWork runs fn atomically: every write made through stores is committed
// when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores SyncStores) error) error
}

// ESFDocumentRepository defines the contract for ESF document persistence.
// Reads are scoped to the owning user.
type ESFDocumentRepository interface {
	Create(ctx context.Context, doc *domain.ESFDocument) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.ESFDocument, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.ESFDocument, int, error)
	// SettleDraft locks the owner's document, runs fn with it and then persists
	// the status, gns id, error message and sent-at fn left on it, only if the
	// stored row is still a draft. The lock is held until the write commits, so
	// concurrent callers run fn one after another. The write is not cancelled
	// with ctx. An error from fn discards the write.
	SettleDraft(ctx context.Context, ownerID, id uuid.UUID, fn func(ctx context.Context, doc *domain.ESFDocument) error) error
}
