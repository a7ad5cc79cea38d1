package normalize

import (
	"testing"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/stretchr/testify/require"
)

func TestResolveAccessKeyPairsFromMapping(t *testing.T) {
	in, err := DecodeAccessKeyPairs(map[string]interface{}{"a.testnet": "ed25519:K1"}, nil)
	require.NoError(t, err)

	want := []near.AccountPublicKey{{AccountID: "a.testnet", PublicKey: "ed25519:K1"}}
	require.Equal(t, want, ResolveAccessKeyPairs(in))
}

func TestResolveAccessKeyPairsFromRecords(t *testing.T) {
	in, err := DecodeAccessKeyPairs([]interface{}{
		map[string]interface{}{"accountId": "a.testnet", "accessKey": "ed25519:K1"},
	}, nil)
	require.NoError(t, err)

	want := []near.AccountPublicKey{{AccountID: "a.testnet", PublicKey: "ed25519:K1"}}
	require.Equal(t, want, ResolveAccessKeyPairs(in))
}

func TestResolveAccessKeyPairsKeepsOrder(t *testing.T) {
	mapping := map[string]interface{}{
		"z.testnet": "ed25519:K1",
		"a.testnet": "ed25519:K2",
		"m.testnet": "ed25519:K3",
	}

	in, err := DecodeAccessKeyPairs(mapping, []string{"z.testnet", "a.testnet", "m.testnet"})
	require.NoError(t, err)
	require.Equal(t, []string{"z.testnet", "a.testnet", "m.testnet"}, AccountIDs(ResolveAccessKeyPairs(in)))

	// unknown order falls back to sorted keys
	in, err = DecodeAccessKeyPairs(mapping, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a.testnet", "m.testnet", "z.testnet"}, AccountIDs(ResolveAccessKeyPairs(in)))

	records, err := DecodeAccessKeyPairs([]interface{}{
		map[string]interface{}{"accountId": "z.testnet", "accessKey": "ed25519:K1"},
		map[string]interface{}{"accountId": "a.testnet", "accessKey": "ed25519:K2"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"z.testnet", "a.testnet"}, AccountIDs(ResolveAccessKeyPairs(records)))
}

func TestResolveAccessKeyPairsEmpty(t *testing.T) {
	in, err := DecodeAccessKeyPairs(nil, nil)
	require.NoError(t, err)
	require.Empty(t, ResolveAccessKeyPairs(in))
}

func TestDecodeAccessKeyPairsRejects(t *testing.T) {
	_, err := DecodeAccessKeyPairs(map[string]interface{}{"a.testnet": 1}, nil)
	require.Error(t, err)

	_, err = DecodeAccessKeyPairs("a.testnet", nil)
	require.Error(t, err)
}
