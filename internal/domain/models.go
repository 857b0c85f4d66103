package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an account of the auth service.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	TIN          *string   `db:"tin" json:"tin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is the caller as resolved from a bearer token.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	TIN      *string   `json:"tin"`
}

// Identity projects a user onto the caller identity.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Username: u.Username, TIN: u.TIN}
}

// Invoice is the canonical local copy of a GNS invoice, unique per DocumentUUID.
type Invoice struct {
	ID                   int64           `db:"id" json:"id"`
	DocumentUUID         uuid.UUID       `db:"document_uuid" json:"document_uuid"`
	TotalAmount          decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedDate          *time.Time      `db:"created_date" json:"created_date"`
	DeliveryDate         *time.Time      `db:"delivery_date" json:"delivery_date"`
	InvoiceDate          *time.Time      `db:"invoice_date" json:"invoice_date"`
	OwnedCrmReceiptCode  *string         `db:"owned_crm_receipt_code" json:"owned_crm_receipt_code"`
	InvoiceNumber        *string         `db:"invoice_number" json:"invoice_number"`
	Number               *string         `db:"number" json:"number"`
	Note                 *string         `db:"note" json:"note"`
	CorrectedReceiptUUID *string         `db:"corrected_receipt_uuid" json:"corrected_receipt_uuid"`
	IsResident           *bool           `db:"is_resident" json:"is_resident"`
	PaymentTypeID        *int64          `db:"payment_type_id" json:"payment_type_id"`
	CurrencyID           *int64          `db:"currency_id" json:"currency_id"`
	StatusID             *int64          `db:"status_id" json:"status_id"`
	ReceiptTypeID        *int64          `db:"receipt_type_id" json:"receipt_type_id"`
	DeliveryTypeID       *int64          `db:"delivery_type_id" json:"delivery_type_id"`
	LegalPersonID        *int64          `db:"legal_person_id" json:"legal_person_id"`
	ContractorID         *int64          `db:"contractor_id" json:"contractor_id"`
	VatTaxTypeID         *int64          `db:"vat_tax_type_id" json:"vat_tax_type_id"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// ApplyRefs copies resolved foreign keys onto the invoice, clearing links the
// source no longer carries.
func (inv *Invoice) ApplyRefs(refs InvoiceRefs) {
	inv.PaymentTypeID = refs.PaymentTypeID
	inv.CurrencyID = refs.CurrencyID
	inv.StatusID = refs.StatusID
	inv.ReceiptTypeID = refs.ReceiptTypeID
	inv.DeliveryTypeID = refs.DeliveryTypeID
	inv.LegalPersonID = refs.LegalPersonID
	inv.ContractorID = refs.ContractorID
	inv.VatTaxTypeID = refs.VatTaxTypeID
}

// ESFDocument is a locally authored electronic invoice awaiting or past
// submission to GNS.
type ESFDocument struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	DocumentUUID   uuid.UUID  `db:"document_uuid" json:"document_uuid"`
	OwnerID        uuid.UUID  `db:"owner_id" json:"owner_id"`
	LegalPersonTIN string     `db:"legal_person_tin" json:"legal_person_tin"`
	Payload        ESFPayload `db:"payload" json:"payload"`
	Status         ESFStatus  `db:"status" json:"status"`
	GNSID          *string    `db:"gns_id" json:"gns_id"`
	ErrorMessage   *string    `db:"error_message" json:"error_message"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Refs returns the invoice's foreign keys.
func (inv *Invoice) Refs() InvoiceRefs {
	return InvoiceRefs{
		PaymentTypeID:  inv.PaymentTypeID,
		CurrencyID:     inv.CurrencyID,
		StatusID:       inv.StatusID,
		ReceiptTypeID:  inv.ReceiptTypeID,
		DeliveryTypeID: inv.DeliveryTypeID,
		LegalPersonID:  inv.LegalPersonID,
		ContractorID:   inv.ContractorID,
		VatTaxTypeID:   inv.VatTaxTypeID,
	}
}
