package zapier

import (
	"fmt"

	"github.com/pkg/errors"
)

// TypedError is implemented by failures that carry a machine readable name,
// such as errors returned by the node.
type TypedError interface {
	error
	Name() string
}

// Classify maps any failure onto the Error taxonomy. The first matching rule wins:
// an *Error anywhere in the chain is returned unchanged, a TypedError becomes a
// RemoteError keeping its name, everything else is Unknown.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var typed TypedError
	if errors.As(err, &typed) {
		return NewRemoteError(typed.Error(), typed.Name())
	}

	return NewUnknownError(err.Error())
}

// ClassifyRecovered classifies a value obtained from recover().
func ClassifyRecovered(v interface{}) *Error {
	switch value := v.(type) {
	case nil:
		return nil
	case error:
		return Classify(value)
	default:
		return NewUnknownError(fmt.Sprint(value))
	}
}
