package gnsmock_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfhub/internal/config"
	"esfhub/internal/domain"
	"esfhub/internal/gateway/gns"
	"esfhub/internal/gnsmock"
	"esfhub/internal/port"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestReceive_Accepted(t *testing.T) {
	store := gnsmock.NewStore()
	r := gnsmock.NewRouter(store)

	w := doRequest(r, http.MethodPost, "/gns/receive",
		`{"document_uuid":"d-1","legal_person_tin":"123","data":{"k":"v"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.NotEmpty(t, resp["gns_id"])
	assert.Equal(t, 1, store.Len())
}

func TestReceive_EmptyTINIsBadTin(t *testing.T) {
	r := gnsmock.NewRouter(gnsmock.NewStore())

	w := doRequest(r, http.MethodPost, "/gns/receive",
		`{"document_uuid":"d-1","legal_person_tin":"","data":{}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"bad tin"}`, w.Body.String())
}

func TestReceive_MissingFields(t *testing.T) {
	r := gnsmock.NewRouter(gnsmock.NewStore())

	w := doRequest(r, http.MethodPost, "/gns/receive", `{"legal_person_tin":"123"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUpdateDelete(t *testing.T) {
	store := gnsmock.NewStore()
	r := gnsmock.NewRouter(store)

	w := doRequest(r, http.MethodPost, "/gns/receive",
		`{"document_uuid":"d-1","legal_person_tin":"123","data":{"note":"a"}}`)
	var accepted map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	id := accepted["gns_id"]

	w = doRequest(r, http.MethodGet, "/gns/receive?exchangeCode=EX", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		ExchangeCode string                   `json:"exchangeCode"`
		Content      []map[string]interface{} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, "EX", listed.ExchangeCode)
	require.Len(t, listed.Content, 1)
	assert.Equal(t, "d-1", listed.Content[0]["documentUuid"])
	assert.Equal(t, "a", listed.Content[0]["note"])

	w = doRequest(r, http.MethodPut, "/gns/receive/"+id, `{"note":"b"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPut, "/gns/receive/missing", `{"note":"b"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodDelete, "/gns/receive/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.Len())

	w = doRequest(r, http.MethodDelete, "/gns/receive/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGatewayClientAgainstMock(t *testing.T) {
	server := httptest.NewServer(gnsmock.NewRouter(gnsmock.NewStore()))
	defer server.Close()

	client := gns.NewClient(config.GNSConfig{
		BaseURL:    server.URL,
		SubmitPath: "/gns/receive",
		FetchPath:  "/gns/receive",
		Timeout:    time.Second,
	})

	resp, err := client.Submit(context.Background(), domain.SubmitRequest{
		DocumentUUID:   "d-1",
		LegalPersonTIN: "123",
		Data:           map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	var accepted domain.SubmitResponse
	require.NoError(t, json.Unmarshal(resp.Body, &accepted))
	assert.Equal(t, "accepted", accepted.Status)

	_, err = client.Submit(context.Background(), domain.SubmitRequest{DocumentUUID: "d-2", Data: map[string]string{}})
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusUnprocessableEntity, gwErr.StatusCode)
	assert.Contains(t, gwErr.Error(), "bad tin")

	fetched, err := client.Fetch(context.Background(), port.FetchFilter{ExchangeCode: "EX"})
	require.NoError(t, err)
	assert.Contains(t, string(fetched.Body), "d-1")
}

func TestList_SeparatesESFDocumentsFromInvoices(t *testing.T) {
	r := gnsmock.NewRouter(gnsmock.NewStore())

	doRequest(r, http.MethodPost, "/gns/receive",
		`{"document_uuid":"inv-1","legal_person_tin":"123","data":{"documentUuid":"inv-1","totalAmount":10}}`)
	doRequest(r, http.MethodPost, "/gns/receive",
		`{"document_uuid":"esf-1","legal_person_tin":"123","data":{"schema_version":"invoice.v1","invoice":{"operationTypeCode":"10"}}}`)

	var listed struct {
		Content []map[string]interface{} `json:"content"`
	}

	w := doRequest(r, http.MethodGet, "/gns/receive", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Content, 1)
	assert.Equal(t, "inv-1", listed.Content[0]["documentUuid"])

	w = doRequest(r, http.MethodGet, "/gns/receive?kind=esf", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Content, 1)
	assert.Equal(t, "esf-1", listed.Content[0]["documentUuid"])
	assert.Equal(t, "invoice.v1", listed.Content[0]["schema_version"])

	w = doRequest(r, http.MethodGet, "/gns/receive?kind=other", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
