package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"esfhub/internal/domain"
	"esfhub/internal/handler"
	"esfhub/mocks"
)

func TestReferenceHandler_List(t *testing.T) {
	refSvc := new(mocks.MockReferenceService)
	h := handler.NewReferenceHandler(refSvc)
	r := gin.New()
	r.GET("/references", h.Kinds)
	r.GET("/references/:kind", h.List)

	refSvc.On("List", mock.Anything, domain.RefCurrency, 0, 20).
		Return([]domain.Reference{{ID: 1, Kind: domain.RefCurrency, Key: "KGS"}}, 1, nil)
	refSvc.On("List", mock.Anything, domain.RefKind("planet"), 0, 20).
		Return(nil, 0, domain.ErrUnknownReferenceKind)

	w := doRequest(r, http.MethodGet, "/references/currency", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"KGS"`)

	w = doRequest(r, http.MethodGet, "/references/planet", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/references", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vat_tax_type")
}
