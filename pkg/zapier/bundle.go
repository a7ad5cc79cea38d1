package zapier

import (
	"bytes"
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Bundle is the request envelope the automation platform sends for every operation.
type Bundle struct {
	InputData map[string]interface{} `json:"inputData"`
	AuthData  map[string]interface{} `json:"authData"`

	rawInput json.RawMessage
}

func (b *Bundle) UnmarshalJSON(data []byte) error {
	var envelope struct {
		InputData json.RawMessage `json:"inputData"`
		AuthData  json.RawMessage `json:"authData"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	input, err := decodeObject(envelope.InputData)
	if err != nil {
		return errors.Wrap(err, "invalid inputData")
	}
	auth, err := decodeObject(envelope.AuthData)
	if err != nil {
		return errors.Wrap(err, "invalid authData")
	}

	b.InputData = input
	b.AuthData = auth
	b.rawInput = envelope.InputData
	return nil
}

func decodeObject(raw json.RawMessage) (map[string]interface{}, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// InputKeys lists the keys of the object held in an input field in the order they
// were received. It returns nil when the order is unknown.
func (b *Bundle) InputKeys(field string) []string {
	if len(b.rawInput) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b.rawInput, &fields); err != nil {
		return nil
	}
	raw, ok := fields[field]
	if !ok {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
	}
	return keys
}

func (b *Bundle) DecodeInput(out interface{}, hooks ...mapstructure.DecodeHookFunc) error {
	return Decode(b.InputData, out, hooks...)
}

func (b *Bundle) DecodeAuth(out interface{}, hooks ...mapstructure.DecodeHookFunc) error {
	return Decode(b.AuthData, out, hooks...)
}

// Decode copies loosely typed platform fields into out. Text fields holding numbers
// and numeric fields holding text are both accepted. Embedded structs are flattened.
func Decode(data map[string]interface{}, out interface{}, hooks ...mapstructure.DecodeHookFunc) error {
	if data == nil {
		data = map[string]interface{}{}
	}

	config := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return errors.Wrap(err, "couldn't create input decoder")
	}

	if err := decoder.Decode(data); err != nil {
		return errors.Wrap(err, "couldn't decode input data")
	}

	return nil
}
