package transformer

import (
	"encoding/json"
	"testing"

	"github.com/nearzap/nearzap/pkg/internal"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/stretchr/testify/require"
)

func chunkParams(t *testing.T, doer internal.Doer) []interface{} {
	var params []interface{}
	require.NoError(t, json.Unmarshal(doer.LastParams(near.MethodChunk), &params))
	return params
}

func TestBlock(t *testing.T) {
	initializer := func(pool *near.Pool) Operation { return &Block{Pool: pool} }

	output, doer := testSearchOperation(t, initializer, map[string]interface{}{
		"finality": "optimistic",
	}, func(doer internal.Doer) {
		doer.AddRawResponse(near.MethodBlock, []byte(`{"author":"node1","header":{"height":17821135},"chunks":[]}`))
	})

	require.Equal(t, "node1", output["author"])
	require.Equal(t, map[string]interface{}{"finality": "optimistic"}, lastParams(t, doer, near.MethodBlock))
}

func TestBlockChanges(t *testing.T) {
	initializer := func(pool *near.Pool) Operation { return &BlockChanges{Pool: pool} }

	_, doer := testSearchOperation(t, initializer, map[string]interface{}{
		"blockId": "17821135",
	}, func(doer internal.Doer) {
		doer.AddRawResponse(near.MethodChangesInBlock, []byte(changesResult))
	})

	require.Equal(t, map[string]interface{}{"block_id": float64(17821135)}, lastParams(t, doer, near.MethodChangesInBlock))
}

func TestChunkDetails(t *testing.T) {
	initializer := func(pool *near.Pool) Operation { return &ChunkDetails{Pool: pool} }
	setup := func(doer internal.Doer) {
		doer.AddRawResponse(near.MethodChunk, []byte(`{"author":"node2","header":{"shard_id":2},"transactions":[],"receipts":[]}`))
	}

	output, doer := testSearchOperation(t, initializer, map[string]interface{}{
		"blockId": 100,
		"shardId": "2",
	}, setup)
	require.Equal(t, "node2", output["author"])
	require.Equal(t, []interface{}{[]interface{}{float64(100), float64(2)}}, chunkParams(t, doer))

	// the hash wins over block and shard
	_, doer = testSearchOperation(t, initializer, map[string]interface{}{
		"chunkHash": "EBM2qg5cGr47EjMPtH88uvmXHDHqmWPzKaQadbWhdw22",
		"blockId":   100,
		"shardId":   0,
	}, setup)
	require.Equal(t, []interface{}{"EBM2qg5cGr47EjMPtH88uvmXHDHqmWPzKaQadbWhdw22"}, chunkParams(t, doer))
}

func TestChunkDetailsInvalidInput(t *testing.T) {
	initializer := func(pool *near.Pool) Operation { return &ChunkDetails{Pool: pool} }
	message := "Either a chunk hash, or a block ID and a shard ID are required"

	testInvalidInput(t, initializer, map[string]interface{}{}, message)
	testInvalidInput(t, initializer, map[string]interface{}{"blockId": 100}, message)
	testInvalidInput(t, initializer, map[string]interface{}{"shardId": 1}, message)
	testInvalidInput(t, initializer, map[string]interface{}{"blockId": 100, "shardId": -1}, "Invalid shard ID -1")
}

func TestGasPrice(t *testing.T) {
	initializer := func(pool *near.Pool) Operation { return &GasPrice{Pool: pool} }
	setup := func(doer internal.Doer) {
		doer.AddRawResponse(near.MethodGasPrice, []byte(`{"gas_price":"100000000"}`))
	}

	output, doer := testSearchOperation(t, initializer, map[string]interface{}{}, setup)
	require.Equal(t, "100000000", output["gasPrice"])
	require.JSONEq(t, `[null]`, string(doer.LastParams(near.MethodGasPrice)))

	_, doer = testSearchOperation(t, initializer, map[string]interface{}{"blockId": "17824600"}, setup)
	require.JSONEq(t, `[17824600]`, string(doer.LastParams(near.MethodGasPrice)))
}

func TestProtocolConfig(t *testing.T) {
	initializer := func(pool *near.Pool) Operation { return &ProtocolConfig{Pool: pool} }

	output, doer := testSearchOperation(t, initializer, map[string]interface{}{}, func(doer internal.Doer) {
		doer.AddRawResponse(near.MethodProtocolConfig, []byte(`{"chain_id":"testnet","protocol_version":52}`))
	})

	require.Equal(t, "testnet", output["chain_id"])
	require.Equal(t, map[string]interface{}{"finality": "final"}, lastParams(t, doer, near.MethodProtocolConfig))
}
