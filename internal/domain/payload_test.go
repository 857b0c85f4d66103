package domain_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfhub/internal/domain"
)

func TestESFPayload_Validate(t *testing.T) {
	assert.NoError(t, (&domain.ESFPayload{SchemaVersion: domain.PayloadSchemaInvoiceV1, Invoice: &domain.InvoiceData{}}).Validate())
	assert.ErrorIs(t, (&domain.ESFPayload{SchemaVersion: "invoice.v2", Invoice: &domain.InvoiceData{}}).Validate(), domain.ErrInvalidPayload)
	assert.ErrorIs(t, (&domain.ESFPayload{SchemaVersion: domain.PayloadSchemaInvoiceV1}).Validate(), domain.ErrInvalidPayload)
}

func TestESFPayload_ValueScan(t *testing.T) {
	code := "ABC"
	p := domain.ESFPayload{
		SchemaVersion: domain.PayloadSchemaInvoiceV1,
		Invoice:       &domain.InvoiceData{OperationTypeCode: "10", OwnedCrmReceiptCode: &code},
	}

	v, err := p.Value()
	require.NoError(t, err)

	var fromBytes domain.ESFPayload
	require.NoError(t, fromBytes.Scan(v))
	assert.Equal(t, "10", fromBytes.Invoice.OperationTypeCode)
	assert.Equal(t, "ABC", *fromBytes.Invoice.OwnedCrmReceiptCode)

	var fromString domain.ESFPayload
	require.NoError(t, fromString.Scan(string(v.([]byte))))
	assert.Equal(t, domain.PayloadSchemaInvoiceV1, fromString.SchemaVersion)

	require.NoError(t, fromString.Scan(nil))
	assert.Nil(t, fromString.Invoice)

	assert.Error(t, fromString.Scan(42))
}

func TestGatewayError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	transport := domain.NewGatewayTransportError("fetch", cause)

	assert.True(t, transport.Transport())
	assert.Equal(t, http.StatusServiceUnavailable, transport.StatusCode)
	assert.ErrorIs(t, transport, cause)
	assert.Contains(t, transport.Error(), "service unavailable")

	status := domain.NewGatewayStatusError("submit", http.StatusUnprocessableEntity, `{"error":"bad tin"}`)
	assert.False(t, status.Transport())
	assert.Contains(t, status.Error(), "422")
	assert.Contains(t, status.Error(), "bad tin")

	var target *domain.GatewayError
	wrapped := &domain.SyncError{Index: 0, Err: status}
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "submit", target.Op)
}

func TestSyncError(t *testing.T) {
	err := &domain.SyncError{Index: 2, DocumentUUID: "abc", Err: domain.ErrInvalidInvoice}

	assert.ErrorIs(t, err, domain.ErrInvalidInvoice)
	assert.Equal(t, "sync aborted at invoice 2 (abc): invalid invoice", err.Error())
}
