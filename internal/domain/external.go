package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar date exchanged with GNS as "YYYY-MM-DD". Timestamps are
// accepted on input and truncated to their date part.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if len(s) < len(dateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	t, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// TimePtr returns nil for a nil or empty date.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// DateFromTime is the inverse of TimePtr.
func DateFromTime(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: t.UTC()}
}

// ExternalCodeName is the shape GNS uses for code/name dictionaries.
type ExternalCodeName struct {
	Code string  `json:"code"`
	Name *string `json:"name"`
}

// ExternalPerson is a legal person or contractor as GNS reports it.
type ExternalPerson struct {
	Pin          string  `json:"pin"`
	FullName     *string `json:"fullName"`
	MainFullName *string `json:"mainFullName"`
	MainPin      *string `json:"mainPin"`
}

// ExternalVatTaxType is a VAT tax type dictionary entry.
type ExternalVatTaxType struct {
	Code string              `json:"code"`
	Name *string             `json:"name"`
	Rate decimal.NullDecimal `json:"rate"`
}

// ExternalInvoice is one invoice record as fetched from (or pushed in the
// format of) the GNS gateway.
type ExternalInvoice struct {
	DocumentUUID         string              `json:"documentUuid"`
	TotalAmount          *decimal.Decimal    `json:"totalAmount"`
	CreatedDate          *Date               `json:"createdDate"`
	DeliveryDate         *Date               `json:"deliveryDate"`
	InvoiceDate          *Date               `json:"invoiceDate"`
	OwnedCrmReceiptCode  *string             `json:"ownedCrmReceiptCode"`
	InvoiceNumber        *string             `json:"invoiceNumber"`
	Number               *string             `json:"number"`
	Note                 *string             `json:"note"`
	CorrectedReceiptUUID *string             `json:"correctedReceiptUuid"`
	IsResident           *string             `json:"isResident"`
	PaymentType          *ExternalCodeName   `json:"paymentType"`
	Currency             *ExternalCodeName   `json:"currency"`
	Status               *ExternalCodeName   `json:"status"`
	ReceiptType          *ExternalCodeName   `json:"receiptType"`
	DeliveryType         *ExternalCodeName   `json:"deliveryType"`
	LegalPerson          *ExternalPerson     `json:"legalPerson"`
	Contractor           *ExternalPerson     `json:"contractor"`
	VatTaxType           *ExternalVatTaxType `json:"vatTaxType"`
}

// ReferenceSeeds returns, per kind, the record to look up or create. Kinds
// whose natural key is absent or blank are left out.
func (e *ExternalInvoice) ReferenceSeeds() map[RefKind]*Reference {
	seeds := make(map[RefKind]*Reference)
	codeName := func(kind RefKind, v *ExternalCodeName) {
		if v == nil || strings.TrimSpace(v.Code) == "" {
			return
		}
		seeds[kind] = &Reference{Kind: kind, Key: strings.TrimSpace(v.Code), Name: v.Name}
	}
	person := func(kind RefKind, v *ExternalPerson) {
		if v == nil || strings.TrimSpace(v.Pin) == "" {
			return
		}
		seeds[kind] = &Reference{
			Kind:     kind,
			Key:      strings.TrimSpace(v.Pin),
			Name:     v.FullName,
			MainName: v.MainFullName,
			MainKey:  v.MainPin,
		}
	}

	codeName(RefPaymentType, e.PaymentType)
	codeName(RefCurrency, e.Currency)
	codeName(RefStatus, e.Status)
	codeName(RefReceiptType, e.ReceiptType)
	codeName(RefDeliveryType, e.DeliveryType)
	person(RefLegalPerson, e.LegalPerson)
	person(RefContractor, e.Contractor)
	if e.VatTaxType != nil && strings.TrimSpace(e.VatTaxType.Code) != "" {
		seeds[RefVatTaxType] = &Reference{
			Kind: RefVatTaxType,
			Key:  strings.TrimSpace(e.VatTaxType.Code),
			Name: e.VatTaxType.Name,
			Rate: e.VatTaxType.Rate,
		}
	}
	return seeds
}

// ParseIsResident derives the resident flag from its string form: nil stays
// nil, "true" in any case is true, and any other text is false.
func ParseIsResident(raw *string) *bool {
	if raw == nil {
		return nil
	}
	v := strings.EqualFold(*raw, "true")
	return &v
}

// NewExternalInvoice renders a stored invoice and its loaded references back
// into the GNS record shape. Missing references are left out.
func NewExternalInvoice(inv *Invoice, refs map[RefKind]*Reference) *ExternalInvoice {
	total := inv.TotalAmount
	ext := &ExternalInvoice{
		DocumentUUID:         inv.DocumentUUID.String(),
		TotalAmount:          &total,
		CreatedDate:          DateFromTime(inv.CreatedDate),
		DeliveryDate:         DateFromTime(inv.DeliveryDate),
		InvoiceDate:          DateFromTime(inv.InvoiceDate),
		OwnedCrmReceiptCode:  inv.OwnedCrmReceiptCode,
		InvoiceNumber:        inv.InvoiceNumber,
		Number:               inv.Number,
		Note:                 inv.Note,
		CorrectedReceiptUUID: inv.CorrectedReceiptUUID,
	}
	if inv.IsResident != nil {
		v := strconv.FormatBool(*inv.IsResident)
		ext.IsResident = &v
	}

	codeName := func(kind RefKind) *ExternalCodeName {
		r, ok := refs[kind]
		if !ok || r == nil {
			return nil
		}
		return &ExternalCodeName{Code: r.Key, Name: r.Name}
	}
	person := func(kind RefKind) *ExternalPerson {
		r, ok := refs[kind]
		if !ok || r == nil {
			return nil
		}
		return &ExternalPerson{Pin: r.Key, FullName: r.Name, MainFullName: r.MainName, MainPin: r.MainKey}
	}

	ext.PaymentType = codeName(RefPaymentType)
	ext.Currency = codeName(RefCurrency)
	ext.Status = codeName(RefStatus)
	ext.ReceiptType = codeName(RefReceiptType)
	ext.DeliveryType = codeName(RefDeliveryType)
	ext.LegalPerson = person(RefLegalPerson)
	ext.Contractor = person(RefContractor)
	if r, ok := refs[RefVatTaxType]; ok && r != nil {
		ext.VatTaxType = &ExternalVatTaxType{Code: r.Key, Name: r.Name, Rate: r.Rate}
	}
	return ext
}
