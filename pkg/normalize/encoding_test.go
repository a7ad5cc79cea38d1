package normalize

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeBase64RoundTrip(t *testing.T) {
	for _, s := range []string{"", "STATE", "ключ", "emoji 🚀", "\x00\x01"} {
		decoded, err := base64.StdEncoding.DecodeString(EncodeBase64(s))
		require.NoError(t, err)
		require.Equal(t, s, string(decoded))
	}
}

func TestEncodePrefix(t *testing.T) {
	require.Equal(t, "", EncodePrefix(nil))

	prefix := "STATE"
	require.Equal(t, "U1RBVEU=", EncodePrefix(&prefix))

	empty := ""
	require.Equal(t, "", EncodePrefix(&empty))
}

func TestEncodeArguments(t *testing.T) {
	encoded, err := EncodeArguments(nil)
	require.NoError(t, err)
	require.Equal(t, "", encoded)

	encoded, err = EncodeArguments(map[string]interface{}{})
	require.NoError(t, err)
	require.Equal(t, "", encoded)

	encoded, err = EncodeArguments(map[string]interface{}{"account_id": "alice.testnet"})
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.JSONEq(t, `{"account_id":"alice.testnet"}`, string(raw))
}

func TestParseResultBuffer(t *testing.T) {
	value, err := ParseResultBuffer([]byte(`{"total":"340282366920938463463374607431768211455","count":12}`))
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{
		"total": "340282366920938463463374607431768211455",
		"count": json.Number("12"),
	}, value)

	value, err = ParseResultBuffer([]byte(`"hello"`))
	require.NoError(t, err)
	require.Equal(t, "hello", value)
}

func TestParseResultBufferFails(t *testing.T) {
	_, err := ParseResultBuffer([]byte{0xff, 0xfe})
	require.Error(t, err)

	_, err = ParseResultBuffer([]byte(`{"a":`))
	require.Error(t, err)

	_, err = ParseResultBuffer([]byte(`1 2`))
	require.Error(t, err)

	_, err = ParseResultBuffer(nil)
	require.Error(t, err)
}
