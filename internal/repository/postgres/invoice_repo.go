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

const invoiceColumns = `document_uuid, total_amount, created_date, delivery_date, invoice_date,
	owned_crm_receipt_code, invoice_number, number, note, corrected_receipt_uuid, is_resident,
	payment_type_id, currency_id, status_id, receipt_type_id, delivery_type_id,
	legal_person_id, contractor_id, vat_tax_type_id`

const invoiceValues = `:document_uuid, :total_amount, :created_date, :delivery_date, :invoice_date,
	:owned_crm_receipt_code, :invoice_number, :number, :note, :corrected_receipt_uuid, :is_resident,
	:payment_type_id, :currency_id, :status_id, :receipt_type_id, :delivery_type_id,
	:legal_person_id, :contractor_id, :vat_tax_type_id`

const invoiceAssignments = `total_amount = :total_amount, created_date = :created_date,
	delivery_date = :delivery_date, invoice_date = :invoice_date,
	owned_crm_receipt_code = :owned_crm_receipt_code, invoice_number = :invoice_number,
	number = :number, note = :note, corrected_receipt_uuid = :corrected_receipt_uuid,
	is_resident = :is_resident, payment_type_id = :payment_type_id, currency_id = :currency_id,
	status_id = :status_id, receipt_type_id = :receipt_type_id, delivery_type_id = :delivery_type_id,
	legal_person_id = :legal_person_id, contractor_id = :contractor_id,
	vat_tax_type_id = :vat_tax_type_id, updated_at = :updated_at`

type invoiceRepo struct {
	db sqlx.ExtContext
}

// NewInvoiceRepo creates an InvoiceRepository over a pool or a transaction.
func NewInvoiceRepo(db sqlx.ExtContext) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

// namedGet runs a named query and scans the first row into dest.
func namedGet(ctx context.Context, db sqlx.ExtContext, dest interface{}, query string, arg interface{}) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, db, dest, db.Rebind(q), args...)
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices (` + invoiceColumns + `, created_at, updated_at)
		VALUES (` + invoiceValues + `, :created_at, :updated_at) RETURNING *`

	if err := namedGet(ctx, r.db, inv, query, inv); err != nil {
		if isUniqueViolation(err, "invoices_document_uuid_key") {
			return domain.ErrDuplicateInvoice
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

type upsertedInvoice struct {
	domain.Invoice
	Inserted bool `db:"inserted"`
}

func (r *invoiceRepo) Upsert(ctx context.Context, inv *domain.Invoice) (bool, error) {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	// xmax is zero only for a tuple written by this statement's insert branch.
	query := `INSERT INTO invoices (` + invoiceColumns + `, created_at, updated_at)
		VALUES (` + invoiceValues + `, :created_at, :updated_at)
		ON CONFLICT (document_uuid) DO UPDATE SET ` + excludedAssignments + `
		RETURNING *, (xmax = 0) AS inserted`

	var row upsertedInvoice
	if err := namedGet(ctx, r.db, &row, query, inv); err != nil {
		return false, fmt.Errorf("invoiceRepo.Upsert: %w", err)
	}
	*inv = row.Invoice
	return row.Inserted, nil
}

const excludedAssignments = `total_amount = EXCLUDED.total_amount, created_date = EXCLUDED.created_date,
	delivery_date = EXCLUDED.delivery_date, invoice_date = EXCLUDED.invoice_date,
	owned_crm_receipt_code = EXCLUDED.owned_crm_receipt_code, invoice_number = EXCLUDED.invoice_number,
	number = EXCLUDED.number, note = EXCLUDED.note, corrected_receipt_uuid = EXCLUDED.corrected_receipt_uuid,
	is_resident = EXCLUDED.is_resident, payment_type_id = EXCLUDED.payment_type_id,
	currency_id = EXCLUDED.currency_id, status_id = EXCLUDED.status_id,
	receipt_type_id = EXCLUDED.receipt_type_id, delivery_type_id = EXCLUDED.delivery_type_id,
	legal_person_id = EXCLUDED.legal_person_id, contractor_id = EXCLUDED.contractor_id,
	vat_tax_type_id = EXCLUDED.vat_tax_type_id, updated_at = EXCLUDED.updated_at`

func (r *invoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := sqlx.GetContext(ctx, r.db, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByDocumentUUID(ctx context.Context, documentUUID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := sqlx.GetContext(ctx, r.db, &inv, "SELECT * FROM invoices WHERE document_uuid = $1", documentUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByDocumentUUID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) FROM invoices"); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err := sqlx.SelectContext(ctx, r.db, &invoices,
		"SELECT * FROM invoices ORDER BY id DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	query := `UPDATE invoices SET ` + invoiceAssignments + ` WHERE id = :id RETURNING *`
	if err := namedGet(ctx, r.db, inv, query, inv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvoiceNotFound
		}
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
