package near

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// default lifetime of a cached response, zero disables caching
const DefaultCacheTimeout = time.Second * 15

// methods whose results never change once the referenced block exists
var cachableMethods = []string{
	MethodBlock,
	MethodChangesInBlock,
	MethodChunk,
	MethodReceipt,
	MethodGenesisConfig,
}

// stores the rpc response for 'method' and 'params' in the cache
// 'methods' is a map where keys are method names and values are maps of rpc responses
type clientCache struct {
	mu        sync.RWMutex
	ctx       context.Context
	logger    log.Logger
	logWriter io.Writer
	debug     bool
	timeout   time.Duration
	methods   map[string]responses
}

// 'responses' is a map where keys are rpc param bytes, and values are response bytes (for the given method)
type responses map[string][]byte

func newClientCache() *clientCache {
	return &clientCache{
		timeout: DefaultCacheTimeout,
		methods: make(map[string]responses),
	}
}

// a response is cachable when the method is immutable and the params pin a block
// instead of following finality
func (cache *clientCache) isCachable(method string, params interface{}) bool {
	if cache.timeout <= 0 {
		return false
	}

	found := false
	for _, m := range cachableMethods {
		if m == method {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	return !followsFinality(params)
}

func followsFinality(params interface{}) bool {
	switch p := params.(type) {
	case BlockReference:
		return p.BlockID.IsZero()
	case *BlockReference:
		return p == nil || p.BlockID.IsZero()
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// positional params carry no finality
		return false
	}
	_, ok := fields["finality"]
	return ok
}

// stores the rpc response for 'method' and 'params' in the cache
func (cache *clientCache) storeResponse(method string, params interface{}, response []byte) error {
	parambytes, err := json.Marshal(params)
	if err != nil {
		return errors.New("failed to marshal params")
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	responses, ok := cache.methods[method]
	if !ok {
		responses = make(map[string][]byte)
		cache.methods[method] = responses
	}
	if _, ok := responses[string(parambytes)]; !ok {
		stored := make([]byte, len(response))
		copy(stored, response)
		responses[string(parambytes)] = stored
		cache.setFlushResponseTimer(method, parambytes)
	}
	return nil
}

// returns the cached rpc response for 'method' and 'params'
func (cache *clientCache) getResponse(method string, params interface{}) ([]byte, error) {
	parambytes, err := json.Marshal(params)
	if err != nil {
		return nil, errors.New("failed to marshal param")
	}
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	if resp, ok := cache.methods[method]; ok {
		if r, ok := resp[string(parambytes)]; ok {
			return r, nil
		}
	}
	return nil, nil
}

// set a timer to flush the cached rpc response for 'method' and 'parambytes'
func (cache *clientCache) setFlushResponseTimer(method string, parambytes []byte) {
	timeout := cache.timeout
	done := cache.done()
	go func() {
		select {
		case <-time.After(timeout):
			cache.getDebugLogger().Log("msg", "flushing cache", "reason", "cache timeout", "method", method)
		case <-done:
			cache.getDebugLogger().Log("msg", "flushing cache", "reason", "context canceled", "method", method)
		}
		cache.mu.Lock()
		defer cache.mu.Unlock()
		delete(cache.methods[method], string(parambytes))
	}()
}

// must be called with cache.mu held
func (cache *clientCache) done() <-chan struct{} {
	if cache.ctx != nil {
		return cache.ctx.Done()
	}
	return nil
}

func (cache *clientCache) setContext(ctx context.Context) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.ctx == nil {
		cache.ctx = ctx
	}
}

func (cache *clientCache) configLogger(logWriter io.Writer, debug bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.logger == nil {
		cache.debug = debug
		cache.logWriter = logWriter
		if debug && logWriter != nil {
			cache.logger = log.With(level.Debug(log.NewLogfmtLogger(logWriter)), "component", "clientCache")
		}
	}
}

func (cache *clientCache) getDebugLogger() log.Logger {
	if !cache.debug || cache.logger == nil {
		return log.NewNopLogger()
	}
	return cache.logger
}
