package zapier

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Output is a single item returned to the platform. Every item has an id.
type Output map[string]interface{}

func (o Output) ID() string {
	id, _ := o["id"].(string)
	return id
}

// NewID returns a time ordered unique identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WithID flattens the top level fields of result into a new Output and sets a
// synthetic id. Results that are not JSON objects are kept under "result".
func WithID(result interface{}) (Output, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't marshal result")
	}

	output := Output{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.UseNumber()
		if err := decoder.Decode(&output); err != nil {
			return nil, errors.Wrap(err, "couldn't flatten result")
		}
	} else {
		output["result"] = json.RawMessage(raw)
	}

	output["id"] = NewID()

	return output, nil
}
