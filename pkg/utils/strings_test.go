package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInStrSlice(t *testing.T) {
	require.True(t, InStrSlice([]string{"mainnet", "testnet"}, "testnet"))
	require.False(t, InStrSlice([]string{"mainnet", "testnet"}, "betanet"))
	require.False(t, InStrSlice(nil, ""))
}

func TestRedact(t *testing.T) {
	fields := map[string]interface{}{
		"senderAccountId": "alice.testnet",
		"privateKey":      "ed25519:secret",
		"amount":          "1",
	}

	got := Redact(fields, "privateKey", "amount")

	require.Equal(t, map[string]interface{}{"senderAccountId": "alice.testnet"}, got)
	require.Len(t, fields, 3, "input must not be modified")
}
