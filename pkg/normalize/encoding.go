package normalize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/pkg/errors"
)

func EncodeBase64(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// EncodePrefix encodes a state key prefix. An absent prefix matches every key.
func EncodePrefix(prefix *string) string {
	if prefix == nil {
		return ""
	}
	return EncodeBase64(*prefix)
}

// EncodeArguments serializes function call arguments to JSON and base64 encodes them.
// No arguments encode to an empty string.
func EncodeArguments(args map[string]interface{}) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "", errors.Wrap(err, "couldn't serialize arguments")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ParseResultBuffer interprets the bytes returned by a view call as UTF-8 JSON.
func ParseResultBuffer(buf []byte) (interface{}, error) {
	if !utf8.Valid(buf) {
		return nil, errors.New("result is not valid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, errors.Wrap(err, "couldn't parse result")
	}
	if dec.More() {
		return nil, errors.New("couldn't parse result: unexpected data after JSON value")
	}
	return value, nil
}
