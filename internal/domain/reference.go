package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefField names an attribute slot on Reference that a kind may map a column to.
type RefField string

const (
	RefFieldName     RefField = "name"
	RefFieldMainName RefField = "main_name"
	RefFieldMainKey  RefField = "main_key"
	RefFieldRate     RefField = "rate"
)

// RefAttr maps one table column onto a Reference attribute.
type RefAttr struct {
	Column string
	Field  RefField
}

// RefDescriptor describes how one reference kind is stored: its table, the
// unique natural key column, and the attribute columns seeded on creation.
type RefDescriptor struct {
	Kind      RefKind
	Table     string
	KeyColumn string
	Attrs     []RefAttr
}

var codeNameAttrs = []RefAttr{{Column: "name", Field: RefFieldName}}

var personAttrs = []RefAttr{
	{Column: "full_name", Field: RefFieldName},
	{Column: "main_full_name", Field: RefFieldMainName},
	{Column: "main_pin", Field: RefFieldMainKey},
}

var refKindOrder = []RefKind{
	RefPaymentType, RefCurrency, RefStatus, RefReceiptType,
	RefDeliveryType, RefLegalPerson, RefContractor, RefVatTaxType,
}

var refDescriptors = map[RefKind]RefDescriptor{
	RefPaymentType:  {Kind: RefPaymentType, Table: "payment_types", KeyColumn: "code", Attrs: codeNameAttrs},
	RefCurrency:     {Kind: RefCurrency, Table: "currencies", KeyColumn: "code", Attrs: codeNameAttrs},
	RefStatus:       {Kind: RefStatus, Table: "statuses", KeyColumn: "code", Attrs: codeNameAttrs},
	RefReceiptType:  {Kind: RefReceiptType, Table: "receipt_types", KeyColumn: "code", Attrs: codeNameAttrs},
	RefDeliveryType: {Kind: RefDeliveryType, Table: "delivery_types", KeyColumn: "code", Attrs: codeNameAttrs},
	RefLegalPerson:  {Kind: RefLegalPerson, Table: "legal_persons", KeyColumn: "pin", Attrs: personAttrs},
	RefContractor:   {Kind: RefContractor, Table: "contractors", KeyColumn: "pin", Attrs: personAttrs},
	RefVatTaxType: {Kind: RefVatTaxType, Table: "vat_tax_types", KeyColumn: "code", Attrs: []RefAttr{
		{Column: "name", Field: RefFieldName},
		{Column: "rate", Field: RefFieldRate},
	}},
}

// LookupRefKind returns the descriptor for kind.
func LookupRefKind(kind RefKind) (RefDescriptor, error) {
	d, ok := refDescriptors[kind]
	if !ok {
		return RefDescriptor{}, ErrUnknownReferenceKind
	}
	return d, nil
}

// RefKinds lists every reference kind in invoice resolution order.
func RefKinds() []RefKind {
	out := make([]RefKind, len(refKindOrder))
	copy(out, refKindOrder)
	return out
}

// Reference is a row of any reference table. Which attributes are populated
// depends on the kind's descriptor.
type Reference struct {
	ID        int64               `db:"id" json:"id"`
	Kind      RefKind             `db:"-" json:"kind"`
	Key       string              `db:"key" json:"key"`
	Name      *string             `db:"name" json:"name,omitempty"`
	MainName  *string             `db:"main_name" json:"main_name,omitempty"`
	MainKey   *string             `db:"main_key" json:"main_key,omitempty"`
	Rate      decimal.NullDecimal `db:"rate" json:"rate"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// Value returns the attribute stored in slot f, suitable as a query argument.
func (r *Reference) Value(f RefField) interface{} {
	switch f {
	case RefFieldName:
		return r.Name
	case RefFieldMainName:
		return r.MainName
	case RefFieldMainKey:
		return r.MainKey
	case RefFieldRate:
		return r.Rate
	}
	return nil
}

// InvoiceRefs holds the resolved foreign keys of an invoice. A nil entry means
// the source carried no natural key for that kind.
type InvoiceRefs struct {
	PaymentTypeID  *int64
	CurrencyID     *int64
	StatusID       *int64
	ReceiptTypeID  *int64
	DeliveryTypeID *int64
	LegalPersonID  *int64
	ContractorID   *int64
	VatTaxTypeID   *int64
}

// Set records the resolved id for kind.
func (r *InvoiceRefs) Set(kind RefKind, id int64) {
	switch kind {
	case RefPaymentType:
		r.PaymentTypeID = &id
	case RefCurrency:
		r.CurrencyID = &id
	case RefStatus:
		r.StatusID = &id
	case RefReceiptType:
		r.ReceiptTypeID = &id
	case RefDeliveryType:
		r.DeliveryTypeID = &id
	case RefLegalPerson:
		r.LegalPersonID = &id
	case RefContractor:
		r.ContractorID = &id
	case RefVatTaxType:
		r.VatTaxTypeID = &id
	}
}

// Get returns the resolved id for kind.
func (r *InvoiceRefs) Get(kind RefKind) *int64 {
	switch kind {
	case RefPaymentType:
		return r.PaymentTypeID
	case RefCurrency:
		return r.CurrencyID
	case RefStatus:
		return r.StatusID
	case RefReceiptType:
		return r.ReceiptTypeID
	case RefDeliveryType:
		return r.DeliveryTypeID
	case RefLegalPerson:
		return r.LegalPersonID
	case RefContractor:
		return r.ContractorID
	case RefVatTaxType:
		return r.VatTaxTypeID
	}
	return nil
}
