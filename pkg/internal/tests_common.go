package internal

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	kitLog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/pkg/errors"
)

// Doer is near.Doer plus the helpers to queue node responses.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
	AddRawResponse(method string, rawResult []byte)
	AddResponse(method string, result interface{}) error
	AddError(method string, rpcErr *near.JSONRPCError) error
	AddTransportError(method string, err error)
	Calls() int
	CallsTo(method string) int
	LastParams(method string) json.RawMessage
}

func NewDoerMappedMock() *doerMappedMock {
	return &doerMappedMock{
		Responses: make(map[string][]mockedResponse),
		params:    make(map[string][]json.RawMessage),
	}
}

type mockedResponse struct {
	result json.RawMessage
	err    *near.JSONRPCError
	fail   error
}

// doerMappedMock answers node requests from a method -> queued responses mapping.
// The last queued response of a method is repeated.
type doerMappedMock struct {
	mutex     sync.Mutex
	Responses map[string][]mockedResponse
	params    map[string][]json.RawMessage
	calls     int
}

func (d *doerMappedMock) Do(request *http.Request) (*http.Response, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	requestJSON, err := parseRequestFromBody(request)
	if err != nil {
		return nil, err
	}
	d.calls++
	d.params[requestJSON.Method] = append(d.params[requestJSON.Method], requestJSON.Params)

	response, ok := d.popResponse(requestJSON.Method)
	if !ok {
		log.Printf("No mocked response for %s\n", requestJSON.Method)
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       ioutil.NopCloser(strings.NewReader("no mocked response")),
		}, nil
	}
	if response.fail != nil {
		return nil, response.fail
	}

	raw, err := json.Marshal(near.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      mustMarshal(requestJSON.ID),
		Result:  response.result,
		Error:   response.err,
	})
	if err != nil {
		return nil, err
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       ioutil.NopCloser(bytes.NewReader(raw)),
	}, nil
}

func (d *doerMappedMock) pushResponse(method string, response mockedResponse) {
	d.Responses[method] = append(d.Responses[method], response)
}

func (d *doerMappedMock) popResponse(method string) (mockedResponse, bool) {
	responses := d.Responses[method]
	switch len(responses) {
	case 0:
		return mockedResponse{}, false
	case 1:
		return responses[0], true
	default:
		d.Responses[method] = responses[1:]
		return responses[0], true
	}
}

func (d *doerMappedMock) AddRawResponse(method string, rawResult []byte) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.pushResponse(method, mockedResponse{result: rawResult})
}

func (d *doerMappedMock) AddResponse(method string, result interface{}) error {
	raw, ok := result.([]byte)
	if !ok {
		var err error
		if raw, err = json.Marshal(result); err != nil {
			return err
		}
	}
	d.AddRawResponse(method, raw)
	return nil
}

func (d *doerMappedMock) AddError(method string, rpcErr *near.JSONRPCError) error {
	if rpcErr == nil {
		return errors.New("rpc error cannot be nil")
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.pushResponse(method, mockedResponse{err: rpcErr})
	return nil
}

func (d *doerMappedMock) AddTransportError(method string, err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.pushResponse(method, mockedResponse{fail: err})
}

func (d *doerMappedMock) Calls() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.calls
}

func (d *doerMappedMock) CallsTo(method string) int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.params[method])
}

func (d *doerMappedMock) LastParams(method string) json.RawMessage {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	params := d.params[method]
	if len(params) == 0 {
		return nil
	}
	return params[len(params)-1]
}

type rawRequest struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func parseRequestFromBody(request *http.Request) (*rawRequest, error) {
	requestBody, err := ioutil.ReadAll(request.Body)
	if err != nil {
		return nil, err
	}

	requestJSON := rawRequest{}
	if err := json.Unmarshal(requestBody, &requestJSON); err != nil {
		return nil, err
	}
	return &requestJSON, nil
}

func mustMarshal(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func CreateMockedClient(doerInstance Doer) (*near.Near, error) {
	return CreateMockedNetworkClient(doerInstance, near.NetworkTestnet)
}

func CreateMockedNetworkClient(doerInstance Doer, network near.Network) (*near.Near, error) {
	logger := kitLog.NewLogfmtLogger(os.Stdout)
	if !isDebugEnvironmentVariableSet() {
		logger = level.NewFilter(logger, level.AllowWarn())
	}
	client, err := near.NewClient(
		network.URL(),
		near.SetDoer(doerInstance),
		near.SetDebug(isDebugEnvironmentVariableSet()),
		near.SetLogger(logger),
		near.SetCacheTimeout(0),
	)
	if err != nil {
		return nil, err
	}

	return near.New(client, network)
}

// CreateMockedPool serves every network from the same doer.
func CreateMockedPool(doerInstance Doer) (*near.Pool, error) {
	client, err := CreateMockedClient(doerInstance)
	if err != nil {
		return nil, err
	}
	return near.NewPool(near.NetworkTestnet, client)
}

func isDebugEnvironmentVariableSet() bool {
	return strings.ToLower(os.Getenv("DEBUG")) == "true"
}

func MustMarshalIndent(v interface{}, prefix, indent string) []byte {
	res, err := json.MarshalIndent(v, prefix, indent)
	if err != nil {
		panic(err)
	}
	return res
}
