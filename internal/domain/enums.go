package domain

// ESFStatus represents the lifecycle of an ESF document.
type ESFStatus string

const (
	ESFStatusDraft  ESFStatus = "draft"
	ESFStatusSent   ESFStatus = "sent"
	ESFStatusFailed ESFStatus = "failed"
)

// RefKind identifies one of the reference tables mirrored from GNS.
type RefKind string

const (
	RefPaymentType  RefKind = "payment_type"
	RefCurrency     RefKind = "currency"
	RefStatus       RefKind = "status"
	RefReceiptType  RefKind = "receipt_type"
	RefDeliveryType RefKind = "delivery_type"
	RefLegalPerson  RefKind = "legal_person"
	RefContractor   RefKind = "contractor"
	RefVatTaxType   RefKind = "vat_tax_type"
)

// SyncStatus is the outcome reported for a batch synchronization.
type SyncStatus string

const (
	SyncStatusOK     SyncStatus = "ok"
	SyncStatusFailed SyncStatus = "failed"
)
