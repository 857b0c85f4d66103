package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
	"esfhub/internal/handler"
	"esfhub/internal/port"
	"esfhub/mocks"
)

func newGNSRouter(gw *mocks.MockGateway) *gin.Engine {
	h := handler.NewGNSHandler(gw)
	r := gin.New()
	r.POST("/gns/invoices", h.Submit)
	r.GET("/gns/invoices", h.Fetch)
	r.PUT("/gns/invoices/:id", h.Update)
	r.DELETE("/gns/invoices/:id", h.Delete)
	return r
}

func TestGNSHandler_Submit_RelaysBody(t *testing.T) {
	gw := new(mocks.MockGateway)
	r := newGNSRouter(gw)
	gw.On("Submit", mock.Anything, mock.MatchedBy(func(data domain.InvoiceData) bool {
		return data.ContractorTin == "02002200220022" && len(data.CatalogEntries) == 1
	})).Return(&port.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(`{"status":"accepted","gns_id":"x"}`)}, nil)

	w := doRequest(r, http.MethodPost, "/gns/invoices", `{
		"isBranchDataSent": false,
		"isPriceWithoutTaxes": false,
		"operationTypeCode": "10",
		"deliveryDate": "2024-03-01",
		"deliveryTypeCode": "1",
		"isResident": true,
		"contractorTin": "02002200220022",
		"currencyCode": "KGS",
		"deliveryCode": "1",
		"paymentCode": "1",
		"taxRateVATCode": "12",
		"catalogEntries": [{"id": 1, "unitClassificationCode": "796", "salesTaxCode": "0", "quantity": 1, "price": 10}]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"accepted","gns_id":"x"}`, w.Body.String())
	gw.AssertExpectations(t)
}

func TestGNSHandler_Submit_ValidatesBody(t *testing.T) {
	gw := new(mocks.MockGateway)
	r := newGNSRouter(gw)

	w := doRequest(r, http.MethodPost, "/gns/invoices", `{"operationTypeCode": "10"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	gw.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestGNSHandler_Fetch_UpstreamErrorKeepsStatus(t *testing.T) {
	gw := new(mocks.MockGateway)
	r := newGNSRouter(gw)
	gw.On("Fetch", mock.Anything, port.FetchFilter{ExchangeCode: "EX"}).
		Return(nil, domain.NewGatewayStatusError("fetch", http.StatusForbidden, `{"error":"denied"}`))

	w := doRequest(r, http.MethodGet, "/gns/invoices?exchangeCode=EX", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decodeResponse(t, w).Detail, "denied")
}

func TestGNSHandler_UpdateAndDelete(t *testing.T) {
	gw := new(mocks.MockGateway)
	r := newGNSRouter(gw)
	gw.On("Update", mock.Anything, "doc-1", map[string]interface{}{"note": "fixed"}).
		Return(&port.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(`{"id":"doc-1"}`)}, nil)
	gw.On("Delete", mock.Anything, "doc-1").
		Return(&port.GatewayResponse{StatusCode: http.StatusNoContent, Body: []byte(`null`)}, nil)
	gw.On("Delete", mock.Anything, "missing").
		Return(nil, domain.NewGatewayStatusError("delete", http.StatusNotFound, `{"error":"not found"}`))

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPut, "/gns/invoices/doc-1", `{"note":"fixed"}`).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodDelete, "/gns/invoices/doc-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/gns/invoices/missing", nil).Code)
}

func TestGNSHandler_TransportFailureIs503(t *testing.T) {
	gw := new(mocks.MockGateway)
	r := newGNSRouter(gw)
	gw.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, domain.NewGatewayTransportError("fetch", assert.AnError))

	w := doRequest(r, http.MethodGet, "/gns/invoices", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
