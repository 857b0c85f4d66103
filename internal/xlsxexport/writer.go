package xlsxexport

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"esfhub/internal/domain"
)

// SheetName is the single worksheet of an invoice export.
const SheetName = "Invoices"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// columns defines the header row.
var columns = []string{
	"ID",
	"Document UUID",
	"Total Amount",
	"Created Date",
	"Delivery Date",
	"Invoice Date",
	"Owned CRM Receipt Code",
	"Invoice Number",
	"Number",
	"Note",
	"Corrected Receipt UUID",
	"Is Resident",
	"Payment Type ID",
	"Currency ID",
	"Status ID",
	"Receipt Type ID",
	"Delivery Type ID",
	"Legal Person ID",
	"Contractor ID",
	"VAT Tax Type ID",
	"Created At",
	"Updated At",
}

// Writer accumulates invoices into an in-memory workbook.
type Writer struct {
	file *excelize.File
	row  int
}

// NewWriter creates a workbook whose only sheet is SheetName.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	return &Writer{file: f, row: 1}, nil
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	return w.writeRow(header)
}

// WriteInvoices appends one row per invoice.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.writeRow(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo serializes the workbook.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// Close releases the workbook.
func (w *Writer) Close() error {
	return w.file.Close()
}

func (w *Writer) writeRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

func invoiceToRow(inv *domain.Invoice) []interface{} {
	return []interface{}{
		inv.ID,
		inv.DocumentUUID.String(),
		inv.TotalAmount.StringFixed(2),
		formatDate(inv.CreatedDate),
		formatDate(inv.DeliveryDate),
		formatDate(inv.InvoiceDate),
		deref(inv.OwnedCrmReceiptCode),
		deref(inv.InvoiceNumber),
		deref(inv.Number),
		deref(inv.Note),
		deref(inv.CorrectedReceiptUUID),
		formatBool(inv.IsResident),
		formatID(inv.PaymentTypeID),
		formatID(inv.CurrencyID),
		formatID(inv.StatusID),
		formatID(inv.ReceiptTypeID),
		formatID(inv.DeliveryTypeID),
		formatID(inv.LegalPersonID),
		formatID(inv.ContractorID),
		formatID(inv.VatTaxTypeID),
		inv.CreatedAt.Format(time.RFC3339),
		inv.UpdatedAt.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "Yes"
	}
	return "No"
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// BuildFilename returns a sanitized filename for Content-Disposition.
// Format: {name}_{YYYY-MM-DD}.xlsx
func BuildFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "invoices"
	}
	return fmt.Sprintf("%s_%s.xlsx", s, time.Now().Format("2006-01-02"))
}
