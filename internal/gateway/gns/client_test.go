package gns_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfhub/internal/config"
	"esfhub/internal/domain"
	"esfhub/internal/gateway/gns"
	"esfhub/internal/port"
)

func testConfig(baseURL string) config.GNSConfig {
	return config.GNSConfig{
		BaseURL:       baseURL,
		SubmitPath:    "/gns/receive",
		FetchPath:     "/gns/receive",
		UpdatePath:    "/gns/receive",
		DeletePath:    "/gns/receive",
		XRoadClient:   "central/GOV/1234/sub",
		ClientUUID:    "client-uuid",
		Authorization: "Bearer gns-token",
		UserTIN:       "01234567890123",
		ExchangeCode:  "EX-1",
		Timeout:       2 * time.Second,
	}
}

func TestClient_Submit_SendsHeadersAndBody(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gns/receive", r.URL.Path)
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"accepted","gns_id":"g-1"}`))
	}))
	defer server.Close()

	client := gns.NewClient(testConfig(server.URL))
	resp, err := client.Submit(context.Background(), domain.SubmitRequest{
		DocumentUUID:   "doc-1",
		LegalPersonTIN: "123",
		Data:           map[string]string{"k": "v"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"accepted","gns_id":"g-1"}`, string(resp.Body))

	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "central/GOV/1234/sub", gotHeaders.Get("X-Road-Client"))
	assert.Equal(t, "client-uuid", gotHeaders.Get("ClientUUID"))
	assert.Equal(t, "Bearer gns-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "01234567890123", gotHeaders.Get("USER-TIN"))
	assert.Equal(t, "doc-1", gotBody["document_uuid"])
	assert.Equal(t, "123", gotBody["legal_person_tin"])
}

func TestClient_Submit_UpstreamErrorKeepsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad tin"}`))
	}))
	defer server.Close()

	client := gns.NewClient(testConfig(server.URL))
	resp, err := client.Submit(context.Background(), map[string]string{})

	assert.Nil(t, resp)
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.False(t, gwErr.Transport())
	assert.Equal(t, http.StatusUnprocessableEntity, gwErr.StatusCode)
	assert.Contains(t, gwErr.Error(), "bad tin")
}

func TestClient_Submit_TransportFailureIs503(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := gns.NewClient(testConfig(baseURL))
	_, err := client.Submit(context.Background(), map[string]string{})

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, gwErr.Transport())
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.StatusCode)
	assert.Contains(t, gwErr.Error(), "service unavailable")
}

func TestClient_Submit_TimeoutIs503(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := gns.NewClient(cfg)
	_, err := client.Submit(context.Background(), map[string]string{})

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.StatusCode)
}

func TestClient_Fetch_ExchangeCode(t *testing.T) {
	var gotQuery []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		gotQuery = append(gotQuery, r.URL.Query().Get("exchangeCode"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := gns.NewClient(testConfig(server.URL))

	_, err := client.Fetch(context.Background(), port.FetchFilter{})
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), port.FetchFilter{ExchangeCode: "EX-2", Params: map[string]string{"page": "1"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"EX-1", "EX-2"}, gotQuery)
}

func TestClient_UpdateAndDelete(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := gns.NewClient(testConfig(server.URL))

	resp, err := client.Update(context.Background(), "abc", map[string]string{"note": "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "null", string(resp.Body))

	_, err = client.Delete(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, []string{"PUT /gns/receive/abc", "DELETE /gns/receive/abc"}, calls)
}

func TestClient_NonJSONBodyIsQuoted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := gns.NewClient(testConfig(server.URL))
	resp, err := client.Delete(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, `"OK"`, string(resp.Body))
}
