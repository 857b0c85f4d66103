package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PayloadSchemaInvoiceV1 is the only payload schema currently accepted.
const PayloadSchemaInvoiceV1 = "invoice.v1"

// CatalogEntry is one goods/services line of an invoice sent to GNS.
type CatalogEntry struct {
	ID                     *int             `json:"id" binding:"required"`
	UnitClassificationCode string           `json:"unitClassificationCode" binding:"required"`
	SalesTaxCode           string           `json:"salesTaxCode" binding:"required"`
	CustomsAuthorityCode   *string          `json:"customsAuthorityCode,omitempty"`
	Quantity               *decimal.Decimal `json:"quantity" binding:"required"`
	Price                  *decimal.Decimal `json:"price" binding:"required"`
	VatAmount              *decimal.Decimal `json:"vatAmount,omitempty"`
	SalesTaxAmount         *decimal.Decimal `json:"salesTaxAmount,omitempty"`
	AmountWithoutTaxes     *decimal.Decimal `json:"amountWithoutTaxes,omitempty"`
	TotalAmount            *decimal.Decimal `json:"totalAmount,omitempty"`
}

// InvoiceData is the GNS "create invoice" document body.
type InvoiceData struct {
	IsBranchDataSent    *bool          `json:"isBranchDataSent" binding:"required"`
	IsPriceWithoutTaxes *bool          `json:"isPriceWithoutTaxes" binding:"required"`
	OperationTypeCode   string         `json:"operationTypeCode" binding:"required"`
	DeliveryDate        *Date          `json:"deliveryDate" binding:"required"`
	DeliveryTypeCode    string         `json:"deliveryTypeCode" binding:"required"`
	IsResident          *bool          `json:"isResident" binding:"required"`
	ContractorTin       string         `json:"contractorTin" binding:"required"`
	CurrencyCode        string         `json:"currencyCode" binding:"required"`
	DeliveryCode        string         `json:"deliveryCode" binding:"required"`
	PaymentCode         string         `json:"paymentCode" binding:"required"`
	TaxRateVATCode      string         `json:"taxRateVATCode" binding:"required"`
	CatalogEntries      []CatalogEntry `json:"catalogEntries" binding:"required,dive"`

	ForeignName                    *string          `json:"foreignName,omitempty"`
	AffiliateTin                   *string          `json:"affiliateTin,omitempty"`
	IsIndustry                     *bool            `json:"isIndustry,omitempty"`
	OwnedCrmReceiptCode            *string          `json:"ownedCrmReceiptCode,omitempty"`
	SupplierBankAccount            *string          `json:"supplierBankAccount,omitempty"`
	ContractorBankAccount          *string          `json:"contractorBankAccount,omitempty"`
	CountryCode                    *string          `json:"countryCode,omitempty"`
	CurrencyRate                   *decimal.Decimal `json:"currencyRate,omitempty"`
	TotalCurrencyValue             *decimal.Decimal `json:"totalCurrencyValue,omitempty"`
	TotalCurrencyValueWithoutTaxes *decimal.Decimal `json:"totalCurrencyValueWithoutTaxes,omitempty"`
	SupplyContractNumber           *string          `json:"supplyContractNumber,omitempty"`
	ContractStartDate              *Date            `json:"contractStartDate,omitempty"`
	Comment                        *string          `json:"comment,omitempty"`
	OpeningBalances                *decimal.Decimal `json:"openingBalances,omitempty"`
	AssessedContributionsAmount    *decimal.Decimal `json:"assessedContributionsAmount,omitempty"`
	PaidAmount                     *decimal.Decimal `json:"paidAmount,omitempty"`
	PenaltiesAmount                *decimal.Decimal `json:"penaltiesAmount,omitempty"`
	FinesAmount                    *decimal.Decimal `json:"finesAmount,omitempty"`
	ClosingBalances                *decimal.Decimal `json:"closingBalances,omitempty"`
	AmountToBePaid                 *decimal.Decimal `json:"amountToBePaid,omitempty"`
	PersonalAccountNumber          *string          `json:"personalAccountNumber,omitempty"`
}

// ESFPayload is the versioned body of an ESF document. It is stored as JSONB.
type ESFPayload struct {
	SchemaVersion string       `json:"schema_version" binding:"required,oneof=invoice.v1"`
	Invoice       *InvoiceData `json:"invoice" binding:"required"`
}

// Validate checks the schema tag independently of request binding.
func (p *ESFPayload) Validate() error {
	if p.SchemaVersion != PayloadSchemaInvoiceV1 || p.Invoice == nil {
		return ErrInvalidPayload
	}
	return nil
}

func (p ESFPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ESFPayload) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = ESFPayload{}
		return nil
	}
	return fmt.Errorf("ESFPayload.Scan: unsupported type %T", src)
}

// SubmitRequest is the body of a GNS submit call.
type SubmitRequest struct {
	DocumentUUID   string      `json:"document_uuid"`
	LegalPersonTIN string      `json:"legal_person_tin"`
	Data           interface{} `json:"data"`
}

// SubmitResponse is what GNS answers to an accepted submission.
type SubmitResponse struct {
	Status string `json:"status"`
	GNSID  string `json:"gns_id"`
}
