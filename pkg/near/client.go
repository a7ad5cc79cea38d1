package near

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nearzap/nearzap/pkg/analytics"
	"github.com/nearzap/nearzap/pkg/params"
	"github.com/pkg/errors"
)

type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	URL       string
	doer      Doer
	logWriter io.Writer
	logger    log.Logger
	debug     bool
	id        int64
	ctx       context.Context
	cache     *clientCache
	analytics *analytics.Analytics
}

func NewClient(rpcURL string, opts ...func(*Client) error) (*Client, error) {
	if rpcURL == "" {
		return nil, errors.New("rpc url cannot be empty")
	}

	c := &Client{
		URL:       rpcURL,
		doer:      &http.Client{Timeout: 30 * time.Second},
		logger:    log.NewNopLogger(),
		logWriter: ioutil.Discard,
		cache:     newClientCache(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.cache.configLogger(c.logWriter, c.debug)
	if c.ctx != nil {
		c.cache.setContext(c.ctx)
	}

	return c, nil
}

// Request performs a JSON-RPC call and decodes the result into result. Node errors are
// returned as *RemoteError; transport failures are wrapped plain errors.
func (c *Client) Request(ctx context.Context, method string, args interface{}, result interface{}) error {
	if ctx == nil {
		ctx = c.GetContext()
	}

	if c.cache.isCachable(method, args) {
		cached, err := c.cache.getResponse(method, args)
		if err == nil && cached != nil {
			c.GetDebugLogger().Log("method", method, "msg", "near (CACHED) RPC response")
			return unmarshalResult(cached, result)
		}
	}

	raw, err := c.do(ctx, method, args)
	if err != nil {
		return err
	}

	if c.cache.isCachable(method, args) {
		if err := c.cache.storeResponse(method, args, raw); err != nil {
			c.GetDebugLogger().Log("method", method, "msg", "failed to cache response", "error", err)
		}
	}

	return unmarshalResult(raw, result)
}

func (c *Client) do(ctx context.Context, method string, args interface{}) (json.RawMessage, error) {
	request := &JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      strconv.FormatInt(atomic.AddInt64(&c.id, 1), 10),
		Method:  method,
		Params:  args,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't marshal %s request", method)
	}

	c.GetDebugLogger().Log("method", method, "msg", "near RPC request", "params", string(body))

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create http request")
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("User-Agent", params.UserAgent)

	httpResponse, err := c.doer.Do(httpRequest)
	if err != nil {
		c.failure()
		return nil, errors.Wrapf(err, "couldn't reach node for %s", method)
	}
	defer httpResponse.Body.Close()

	responseBody, err := ioutil.ReadAll(httpResponse.Body)
	if err != nil {
		c.failure()
		return nil, errors.Wrap(err, "couldn't read node response")
	}

	var response JSONRPCResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		c.failure()
		return nil, errors.Errorf("unexpected node response (status %d): %s", httpResponse.StatusCode, snip(responseBody))
	}
	c.success()

	c.GetDebugLogger().Log("method", method, "msg", "near RPC response", "response", snip(responseBody))

	if response.Error != nil {
		return nil, newRemoteError(response.Error)
	}

	if len(response.Result) == 0 {
		return nil, errors.Errorf("empty result for %s (status %d)", method, httpResponse.StatusCode)
	}

	return response.Result, nil
}

func unmarshalResult(raw json.RawMessage, result interface{}) error {
	if result == nil {
		return nil
	}
	if target, ok := result.(*json.RawMessage); ok {
		*target = append((*target)[:0], raw...)
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return errors.Wrap(err, "couldn't decode node result")
	}
	return nil
}

const maxLoggedResponse = 1024

func snip(body []byte) string {
	if len(body) <= maxLoggedResponse {
		return string(body)
	}
	return fmt.Sprintf("%s ...snip... (%d bytes)", body[:maxLoggedResponse], len(body))
}

func (c *Client) success() {
	if c.analytics != nil {
		c.analytics.Success()
	}
}

func (c *Client) failure() {
	if c.analytics != nil {
		c.analytics.Failure()
	}
}

func (c *Client) GetContext() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *Client) GetLogger() log.Logger {
	return c.logger
}

func (c *Client) GetDebugLogger() log.Logger {
	if !c.IsDebugEnabled() {
		return log.NewNopLogger()
	}
	return level.Debug(c.logger)
}

func (c *Client) GetErrorLogger() log.Logger {
	return level.Error(c.logger)
}

func (c *Client) IsDebugEnabled() bool {
	return c.debug
}

func SetDoer(d Doer) func(*Client) error {
	return func(c *Client) error {
		c.doer = d
		return nil
	}
}

func SetDebug(debug bool) func(*Client) error {
	return func(c *Client) error {
		c.debug = debug
		return nil
	}
}

func SetLogger(l log.Logger) func(*Client) error {
	return func(c *Client) error {
		c.logger = log.WithPrefix(l, "component", "near.Client")
		return nil
	}
}

func SetLogWriter(w io.Writer) func(*Client) error {
	return func(c *Client) error {
		c.logWriter = w
		return nil
	}
}

func SetContext(ctx context.Context) func(*Client) error {
	return func(c *Client) error {
		c.ctx = ctx
		return nil
	}
}

func SetAnalytics(a *analytics.Analytics) func(*Client) error {
	return func(c *Client) error {
		c.analytics = a
		return nil
	}
}

func SetCacheTimeout(timeout time.Duration) func(*Client) error {
	return func(c *Client) error {
		if timeout < 0 {
			return errors.Errorf("cache timeout cannot be negative: %s", timeout)
		}
		c.cache.timeout = timeout
		return nil
	}
}
