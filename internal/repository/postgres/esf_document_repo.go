package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

type esfDocumentRepo struct {
	db *sqlx.DB
}

// NewESFDocumentRepo creates a new PostgreSQL-backed ESFDocumentRepository.
func NewESFDocumentRepo(db *sqlx.DB) port.ESFDocumentRepository {
	return &esfDocumentRepo{db: db}
}

func (r *esfDocumentRepo) Create(ctx context.Context, doc *domain.ESFDocument) error {
	doc.ID = uuid.New()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO esf_documents (id, document_uuid, owner_id, legal_person_tin, payload,
			status, gns_id, error_message, sent_at, created_at, updated_at)
		VALUES (:id, :document_uuid, :owner_id, :legal_person_tin, :payload,
			:status, :gns_id, :error_message, :sent_at, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		if isUniqueViolation(err, "esf_documents_document_uuid_key") {
			return domain.ErrDuplicateDocument
		}
		return fmt.Errorf("esfDocumentRepo.Create: %w", err)
	}
	return nil
}

func (r *esfDocumentRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.ESFDocument, error) {
	var doc domain.ESFDocument
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM esf_documents WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("esfDocumentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *esfDocumentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.ESFDocument, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM esf_documents WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("esfDocumentRepo.ListByOwner count: %w", err)
	}

	var docs []domain.ESFDocument
	err = r.db.SelectContext(ctx, &docs,
		"SELECT * FROM esf_documents WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("esfDocumentRepo.ListByOwner: %w", err)
	}
	return docs, total, nil
}

func (r *esfDocumentRepo) SettleDraft(
	ctx context.Context,
	ownerID, id uuid.UUID,
	fn func(ctx context.Context, doc *domain.ESFDocument) error,
) error {
	// The state write must land even when the caller goes away mid-submit.
	dbCtx := context.WithoutCancel(ctx)

	tx, err := r.db.BeginTxx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("esfDocumentRepo.SettleDraft begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var doc domain.ESFDocument
	err = tx.GetContext(dbCtx, &doc,
		"SELECT * FROM esf_documents WHERE id = $1 AND owner_id = $2 FOR UPDATE", id, ownerID)
	if err != nil {
		rollback(tx, "esfDocumentRepo.SettleDraft")
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrDocumentNotFound
		}
		return fmt.Errorf("esfDocumentRepo.SettleDraft lock: %w", err)
	}

	if err := fn(ctx, &doc); err != nil {
		rollback(tx, "esfDocumentRepo.SettleDraft")
		return err
	}
	if err := transitionFromDraft(dbCtx, tx, &doc); err != nil {
		rollback(tx, "esfDocumentRepo.SettleDraft")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("esfDocumentRepo.SettleDraft commit: %w", err)
	}
	return nil
}

func transitionFromDraft(ctx context.Context, exec sqlx.ExecerContext, doc *domain.ESFDocument) error {
	doc.UpdatedAt = time.Now().UTC()

	query := `UPDATE esf_documents SET status = $1, gns_id = $2, error_message = $3, sent_at = $4,
			updated_at = $5
		WHERE id = $6 AND owner_id = $7 AND status = $8`

	result, err := exec.ExecContext(ctx, query,
		doc.Status, doc.GNSID, doc.ErrorMessage, doc.SentAt, doc.UpdatedAt,
		doc.ID, doc.OwnerID, domain.ESFStatusDraft)
	if err != nil {
		return fmt.Errorf("esfDocumentRepo.transitionFromDraft: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("esfDocumentRepo.transitionFromDraft rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrDocumentNotDraft
	}
	return nil
}
