package transformer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nearzap/nearzap/pkg/internal"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/stretchr/testify/require"
)

type OperationInitializer = func(*near.Pool) Operation

// bundleFromJSON builds a bundle the way the server receives it, keeping the
// input key order and json numbers.
func bundleFromJSON(t *testing.T, raw string) *zapier.Bundle {
	bundle := new(zapier.Bundle)
	require.NoError(t, json.Unmarshal([]byte(raw), bundle))
	return bundle
}

func bundleWithInput(t *testing.T, input map[string]interface{}) *zapier.Bundle {
	raw, err := json.Marshal(map[string]interface{}{"inputData": input})
	require.NoError(t, err)
	return bundleFromJSON(t, string(raw))
}

func newMockedPool(t *testing.T) (*near.Pool, internal.Doer) {
	doer := internal.NewDoerMappedMock()
	pool, err := internal.CreateMockedPool(doer)
	require.NoError(t, err)
	return pool, doer
}

func performOperation(t *testing.T, initializer OperationInitializer, bundle *zapier.Bundle, setup func(internal.Doer)) (interface{}, *zapier.Error, internal.Doer) {
	pool, doer := newMockedPool(t)
	if setup != nil {
		setup(doer)
	}
	got, zerr := initializer(pool).Perform(context.Background(), bundle)
	return got, zerr, doer
}

// testSearchOperation runs a search and returns its single output.
func testSearchOperation(t *testing.T, initializer OperationInitializer, input map[string]interface{}, setup func(internal.Doer)) (zapier.Output, internal.Doer) {
	got, zerr, doer := performOperation(t, initializer, bundleWithInput(t, input), setup)
	require.Nil(t, zerr)

	outputs, ok := got.([]zapier.Output)
	require.True(t, ok, "unexpected result type %T", got)
	require.Len(t, outputs, 1)
	require.NotEmpty(t, outputs[0].ID())
	return outputs[0], doer
}

// testInvalidInput asserts the operation rejects input without reaching the node.
func testInvalidInput(t *testing.T, initializer OperationInitializer, input map[string]interface{}, message string) {
	got, zerr, doer := performOperation(t, initializer, bundleWithInput(t, input), nil)
	require.Nil(t, got)
	require.NotNil(t, zerr)
	require.Equal(t, zapier.KindInvalidData, zerr.Kind)
	require.Equal(t, zapier.CodeInvalidData, zerr.Code)
	require.Equal(t, message, zerr.Message)
	require.Equal(t, 0, doer.Calls())
}

func lastParams(t *testing.T, doer internal.Doer, method string) map[string]interface{} {
	raw := doer.LastParams(method)
	require.NotNil(t, raw, "no %s call", method)
	var params map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &params))
	return params
}
