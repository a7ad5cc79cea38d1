package near

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/nearzap/nearzap/pkg/analytics"
	"github.com/nearzap/nearzap/pkg/params"
	"github.com/stretchr/testify/require"
)

type rpcServer struct {
	*httptest.Server
	mu        sync.Mutex
	responses map[string]string
	requests  []JSONRPCRequest
	params    []json.RawMessage
	agents    []string
}

func newRPCServer(t *testing.T, responses map[string]string) *rpcServer {
	s := &rpcServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			JSONRPCRequest
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		s.mu.Lock()
		s.requests = append(s.requests, req.JSONRPCRequest)
		s.params = append(s.params, req.Params)
		s.agents = append(s.agents, r.Header.Get("User-Agent"))
		response, ok := s.responses[req.Method]
		s.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("no such method"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `",` + response + `}`))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *rpcServer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *rpcServer) lastParams() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.params[len(s.params)-1])
}

func newTestNear(t *testing.T, s *rpcServer, opts ...func(*Client) error) *Near {
	client, err := NewClient(s.URL, append([]func(*Client) error{SetLogger(log.NewNopLogger())}, opts...)...)
	require.NoError(t, err)
	n, err := New(client, NetworkTestnet)
	require.NoError(t, err)
	return n
}

func TestViewAccessKeyList(t *testing.T) {
	s := newRPCServer(t, map[string]string{
		MethodQuery: `"result":{"block_hash":"H","block_height":17,"keys":[{"public_key":"ed25519:K1","access_key":{"nonce":1,"permission":"FullAccess"}}]}`,
	})
	n := newTestNear(t, s)

	list, err := n.ViewAccessKeyList(context.Background(), "alice.testnet", FinalReference())
	require.NoError(t, err)

	require.True(t, list.Contains("ed25519:K1"))
	require.Equal(t, uint64(17), list.BlockHeight)
	require.JSONEq(t, `{"nonce":1,"permission":"FullAccess"}`, string(list.Keys[0].AccessKey))
	require.JSONEq(t, `{"request_type":"view_access_key_list","account_id":"alice.testnet","finality":"final"}`, s.lastParams())
	require.Equal(t, "2.0", s.requests[0].JSONRPC)
	require.Equal(t, MethodQuery, s.requests[0].Method)
}

func TestRequestIDsIncrease(t *testing.T) {
	s := newRPCServer(t, map[string]string{MethodStatus: `"result":{"chain_id":"testnet"}`})
	n := newTestNear(t, s)

	for i := 0; i < 3; i++ {
		_, err := n.Status(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, "1", s.requests[0].ID)
	require.Equal(t, "3", s.requests[2].ID)
}

func TestRemoteErrorFromRPCError(t *testing.T) {
	s := newRPCServer(t, map[string]string{
		MethodTx: `"error":{"name":"HANDLER_ERROR","cause":{"name":"UNKNOWN_TRANSACTION","info":{}},"code":-32000,"message":"Server error","data":"Transaction X doesn't exist"}`,
	})
	n := newTestNear(t, s)

	_, err := n.TxStatus(context.Background(), "X", "alice.testnet")
	require.Error(t, err)

	remote, ok := err.(*RemoteError)
	require.True(t, ok, "expected *RemoteError, got %T", err)
	require.Equal(t, "UNKNOWN_TRANSACTION", remote.Name())
	require.Equal(t, -32000, remote.Code)
	require.Equal(t, "[-32000] Server error: Transaction X doesn't exist", remote.Error())
	require.JSONEq(t, `["X","alice.testnet"]`, s.lastParams())
}

func TestRemoteErrorTypeFromMessage(t *testing.T) {
	cases := []struct {
		rpcErr JSONRPCError
		want   string
	}{
		{JSONRPCError{Code: -32000, Message: "Server error", Data: json.RawMessage(`"account nope.testnet does not exist while viewing"`)}, ErrorTypeAccountDoesNotExist},
		{JSONRPCError{Code: -32000, Message: "Server error", Data: json.RawMessage(`"Timeout"`)}, ErrorTypeTimeout},
		{JSONRPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32700, Message: "Parse error", Data: json.RawMessage(`"bad params"`)}, "REQUEST_VALIDATION_ERROR"},
		{JSONRPCError{Code: -32000, Message: "Server error", Data: json.RawMessage(`{"TxExecutionError":{}}`)}, ErrorTypeUntyped},
	}

	for _, c := range cases {
		rpcErr := c.rpcErr
		require.Equal(t, c.want, newRemoteError(&rpcErr).Name())
	}
}

func TestQueryResultError(t *testing.T) {
	s := newRPCServer(t, map[string]string{
		MethodQuery: `"result":{"error":"wasm execution failed with error: FunctionCallError(CompilationError(CodeDoesNotExist { account_id: \"alice.testnet\" }))","logs":[],"block_height":1,"block_hash":"H"}`,
	})
	n := newTestNear(t, s)

	_, err := n.CallFunction(context.Background(), "alice.testnet", "get", "", FinalReference())
	remote, ok := err.(*RemoteError)
	require.True(t, ok, "expected *RemoteError, got %T", err)
	require.Equal(t, ErrorTypeCodeDoesNotExist, remote.Name())
	require.Contains(t, remote.Error(), "Querying call_function failed")
}

func TestCallFunctionDecodesResultBytes(t *testing.T) {
	s := newRPCServer(t, map[string]string{
		MethodQuery: `"result":{"result":[34,104,105,34],"logs":["log"],"block_height":5,"block_hash":"H"}`,
	})
	n := newTestNear(t, s)

	result, err := n.CallFunction(context.Background(), "guest-book.testnet", "greet", "e30=", BlockReference{BlockID: BlockHeight(5)})
	require.NoError(t, err)
	require.Equal(t, `"hi"`, string(result.Result))
	require.Equal(t, []string{"log"}, result.Logs)
	require.JSONEq(t, `{"request_type":"call_function","account_id":"guest-book.testnet","method_name":"greet","args_base64":"e30=","block_id":5}`, s.lastParams())
}

func TestTransportFailures(t *testing.T) {
	a := analytics.NewAnalytics(2)
	s := newRPCServer(t, map[string]string{})
	n := newTestNear(t, s, SetAnalytics(a))

	_, err := n.NetworkInfo(context.Background())
	require.Error(t, err)
	_, isRemote := err.(*RemoteError)
	require.False(t, isRemote)
	require.Contains(t, err.Error(), "status 404")

	s.Close()
	_, err = n.NetworkInfo(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "couldn't reach node")

	require.Equal(t, float32(0), a.GetSuccessRate())
}

func TestGasPriceParams(t *testing.T) {
	s := newRPCServer(t, map[string]string{MethodGasPrice: `"result":{"gas_price":"100000000"}`})
	n := newTestNear(t, s)

	price, err := n.GasPrice(context.Background(), BlockID{})
	require.NoError(t, err)
	require.Equal(t, "100000000", price.GasPrice)
	require.Equal(t, `[null]`, s.lastParams())

	_, err = n.GasPrice(context.Background(), BlockHeight(9))
	require.NoError(t, err)
	require.Equal(t, `[9]`, s.lastParams())
}

func TestChunkAndReceiptParams(t *testing.T) {
	s := newRPCServer(t, map[string]string{
		MethodChunk:   `"result":{"header":{}}`,
		MethodReceipt: `"result":{"receipt_id":"R"}`,
	})
	n := newTestNear(t, s, SetCacheTimeout(0))

	_, err := n.Chunk(context.Background(), ChunkID{BlockID: BlockHeight(100), ShardID: 2})
	require.NoError(t, err)
	require.Equal(t, `[[100,2]]`, s.lastParams())

	_, err = n.Receipt(context.Background(), "R")
	require.NoError(t, err)
	require.Equal(t, `{"receipt_id":"R"}`, s.lastParams())
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	s := newRPCServer(t, map[string]string{MethodStatus: `"result":{}`})
	client, err := NewClient(s.URL, SetLogger(log.NewLogfmtLogger(&buf)), SetDebug(true))
	require.NoError(t, err)

	_, err = (&Method{Client: client}).Status(context.Background())
	require.NoError(t, err)
	require.Contains(t, buf.String(), "near RPC request")
	require.Contains(t, buf.String(), "component=near.Client")
}

func TestPool(t *testing.T) {
	s := newRPCServer(t, map[string]string{})
	testnet := newTestNear(t, s)

	mainnetClient, err := NewClient(s.URL)
	require.NoError(t, err)
	mainnet, err := New(mainnetClient, NetworkMainnet)
	require.NoError(t, err)

	pool, err := NewPool(NetworkTestnet, testnet, mainnet)
	require.NoError(t, err)

	require.Same(t, mainnet, pool.Get(NetworkMainnet))
	require.Same(t, testnet, pool.Get(NetworkBetanet))
	require.Equal(t, []Network{NetworkMainnet, NetworkTestnet}, pool.Networks())
	require.Error(t, pool.Add(testnet))

	_, err = NewPool(NetworkBetanet, testnet)
	require.Error(t, err)

	_, err = New(mainnetClient, Network("devnet"))
	require.Error(t, err)
}

func TestRequestsIdentifyAdapter(t *testing.T) {
	s := newRPCServer(t, map[string]string{
		MethodStatus: `"result":{"chain_id":"testnet","sync_info":{"latest_block_height":1}}`,
	})
	n := newTestNear(t, s)

	_, err := n.NodeStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{params.UserAgent}, s.agents)
}
