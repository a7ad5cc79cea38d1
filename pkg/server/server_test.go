package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nearzap/nearzap/pkg/analytics"
	"github.com/nearzap/nearzap/pkg/internal"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/transformer"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const nodeStatusResult = `{"chain_id":"testnet","sync_info":{"latest_block_hash":"abc","latest_block_height":17822900,"syncing":false}}`

func newTestServer(t *testing.T, opts ...Option) (*Server, internal.Doer) {
	doer := internal.NewDoerMappedMock()
	pool, err := internal.CreateMockedPool(doer)
	require.NoError(t, err)

	tr, err := transformer.New(pool, transformer.DefaultOperations(pool, nil))
	require.NoError(t, err)

	s, err := New(pool, tr, "localhost:0", opts...)
	require.NoError(t, err)
	return s, doer
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) zapier.Error {
	var zerr zapier.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zerr))
	return zerr
}

func TestSearchRoute(t *testing.T) {
	s, doer := newTestServer(t)
	doer.AddRawResponse(near.MethodQuery, []byte(`{"amount":"100","locked":"0","block_height":1,"block_hash":"abc"}`))

	rec := serve(s, http.MethodPost, "/searches/viewAccount", `{"inputData":{"accountId":"alice.testnet"},"authData":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var outputs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outputs))
	require.Len(t, outputs, 1)
	require.Equal(t, "100", outputs[0]["amount"])
	require.NotEmpty(t, outputs[0]["id"])
}

func TestInvalidDataRoute(t *testing.T) {
	s, doer := newTestServer(t)

	rec := serve(s, http.MethodPost, "/searches/viewAccount", `{"inputData":{"accountId":"bad id"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, zapier.Error{
		Message: "Invalid account ID",
		Kind:    zapier.KindInvalidData,
		Code:    zapier.CodeInvalidData,
	}, decodeError(t, rec))
	require.Equal(t, 0, doer.Calls())
}

func TestRemoteErrorRoute(t *testing.T) {
	s, doer := newTestServer(t)
	require.NoError(t, doer.AddError(near.MethodBlock, &near.JSONRPCError{
		Name:    "HANDLER_ERROR",
		Cause:   &near.ErrorCause{Name: "UNKNOWN_BLOCK"},
		Code:    -32000,
		Message: "Server error",
		Data:    []byte(`"DB Not Found Error: BLOCK HEIGHT: 1"`),
	}))

	rec := serve(s, http.MethodPost, "/searches/block", `{"inputData":{"blockId":1}}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	zerr := decodeError(t, rec)
	require.Equal(t, zapier.KindRemoteError, zerr.Kind)
	require.Equal(t, "UNKNOWN_BLOCK", zerr.Detail)
}

func TestUnknownOperationRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodPost, "/creates/sendTokens", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Unknown creates operation: sendTokens", decodeError(t, rec).Message)

	rec = serve(s, http.MethodPost, "/widgets/viewAccount", `{}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBundle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodPost, "/searches/block", `{"inputData":[1,2]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	zerr := decodeError(t, rec)
	require.Equal(t, zapier.KindInvalidData, zerr.Kind)
	require.True(t, strings.HasPrefix(zerr.Message, "Invalid bundle: "), zerr.Message)
}

func TestAuthenticationRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodPost, "/authentication/test", `{"authData":{"accountId":"alice.testnet"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing required field: privateKey", decodeError(t, rec).Message)
}

func TestOperationsRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodGet, "/operations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ops map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Equal(t, []string{"test"}, ops["authentication"])
	require.Contains(t, ops["searches"], "viewAccount")
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t)
	serve(s, http.MethodPost, "/searches/viewAccount", `{"inputData":{}}`)
	serve(s, http.MethodPost, "/searches/doesNotExist", `{}`)

	rec := serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `nearzap_operation_requests_total{key="viewAccount",kind="searches"} 1`)
	require.Contains(t, body, `nearzap_operation_errors_total{error_kind="InvalidData",key="viewAccount",kind="searches"} 1`)
	require.Contains(t, body, `key="unregistered"`)
}

func TestHealthEndpoints(t *testing.T) {
	s, doer := newTestServer(t)
	doer.AddRawResponse(near.MethodStatus, []byte(nodeStatusResult))

	require.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/live", "").Code)
	require.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/ready", "").Code)
}

func TestHealthReportsLowSuccessRate(t *testing.T) {
	nearAnalytics := analytics.NewAnalytics(4)
	percent := 75
	s, doer := newTestServer(t, SetNearAnalytics(nearAnalytics), SetHealthCheckPercent(&percent))
	doer.AddRawResponse(near.MethodStatus, []byte(nodeStatusResult))

	nearAnalytics.Success()
	nearAnalytics.Success()
	nearAnalytics.Success()
	nearAnalytics.Failure()
	require.NoError(t, s.testNodeErrorRate())

	nearAnalytics.Failure()
	require.Error(t, s.testNodeErrorRate())
	require.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/live", "").Code)
}

func TestHealthReportsFailingOperations(t *testing.T) {
	zapierAnalytics := analytics.NewAnalytics(2)
	s, doer := newTestServer(t, SetZapierAnalytics(zapierAnalytics))
	doer.AddTransportError(near.MethodBlock, errors.New("connection refused"))

	// invalid input is the caller's fault and doesn't count as a failure
	serve(s, http.MethodPost, "/searches/viewAccount", `{"inputData":{"accountId":"bad id"}}`)
	rec := serve(s, http.MethodPost, "/searches/block", `{"inputData":{"blockId":1}}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, zapier.KindUnknown, decodeError(t, rec).Kind)
	require.Equal(t, 2, zapierAnalytics.Requests())

	err := s.testZapierErrorRate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "over the last 2 requests")
}

func TestBlocksSyncing(t *testing.T) {
	s, doer := newTestServer(t)
	doer.AddRawResponse(near.MethodStatus, []byte(`{"chain_id":"testnet","sync_info":{"latest_block_height":100,"syncing":true}}`))

	require.Equal(t, ErrNodeSyncing, s.testBlocksSyncing())
	// answered from the previous check
	require.Equal(t, ErrNodeSyncing, s.testBlocksSyncing())
	require.Equal(t, 1, doer.CallsTo(near.MethodStatus))
}

func TestReadinessFailsWithoutNode(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/ready", "").Code)
}

func TestSetHealthCheckPercentBounds(t *testing.T) {
	percent := 101
	require.Error(t, SetHealthCheckPercent(&percent)(&Server{}))
	require.Error(t, SetHealthCheckPercent(nil)(&Server{}))
}
