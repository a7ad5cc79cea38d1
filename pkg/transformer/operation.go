package transformer

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/normalize"
	"github.com/nearzap/nearzap/pkg/utils"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/pkg/errors"
)

// redactedFields never show up in log lines.
var redactedFields = []string{"privateKey", "amount", "deposit"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type networkInput struct {
	Network string `json:"network"`
}

type accountInput struct {
	networkInput
	normalize.BlockInput
	AccountID string `json:"accountId"`
}

type accountsInput struct {
	networkInput
	normalize.BlockInput
	AccountIDs []string `json:"accountIds"`
}

// decodeInput copies the bundle input into in and checks its validate tags.
func decodeInput(bundle *zapier.Bundle, in interface{}) *zapier.Error {
	if err := bundle.DecodeInput(in, normalize.BlockIDHookFunc()); err != nil {
		return zapier.NewInvalidDataError(errors.Cause(err).Error())
	}
	return validateInput(in)
}

func validateInput(in interface{}) *zapier.Error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return zapier.NewInvalidDataError(err.Error())
	}

	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return zapier.NewInvalidDataErrorf("Missing required field: %s", fe.Field())
	case "oneof":
		return zapier.NewInvalidDataErrorf("Invalid %s. Must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return zapier.NewInvalidDataErrorf("Invalid %s", fe.Field())
	}
}

func validateAccountID(accountID, message string) *zapier.Error {
	if !near.ValidateAccountID(accountID) {
		return zapier.NewInvalidDataError(message)
	}
	return nil
}

// validateAccountIDs reports the first invalid id of a list.
func validateAccountIDs(accountIDs []string) *zapier.Error {
	if len(accountIDs) == 0 {
		return zapier.NewInvalidDataError("Missing required field: accountIds")
	}
	if near.ValidateAccountIDs(accountIDs) {
		return nil
	}
	for _, accountID := range accountIDs {
		if !near.ValidateAccountID(accountID) {
			return zapier.NewInvalidDataErrorf("Invalid account ID for account: %s", accountID)
		}
	}
	return nil
}

// nodeFor picks the client of the requested network, then of the authenticated one.
func nodeFor(pool *near.Pool, bundle *zapier.Bundle, network string) *near.Near {
	auth, _ := bundle.AuthData["network"].(string)
	return pool.Get(normalize.ResolveNetwork(network, auth))
}

type nodeCall func(ctx context.Context, n *near.Near) (interface{}, error)

// activity holds the log lines of an operation.
type activity struct {
	start  string
	done   string
	failed string
}

func getting(noun string) activity {
	return activity{
		start:  "Getting " + noun,
		done:   "Got " + noun + " successfully",
		failed: "Error getting " + noun,
	}
}

func calling(noun string) activity {
	return activity{
		start:  "Calling " + noun,
		done:   "Called " + noun + " successfully",
		failed: "Error calling " + noun,
	}
}

// request logs, calls the node and classifies the failure.
func request(ctx context.Context, op Operation, n *near.Near, a activity, bundle *zapier.Bundle, call nodeCall) (interface{}, *zapier.Error) {
	GetLogger(op, n).Log("msg", fmt.Sprintf("%s with input data: %s", a.start, logData(bundle.InputData)))

	result, err := call(ctx, n)
	if err != nil {
		GetErrorLogger(op, n).Log("msg", a.failed, "error", err)
		return nil, zapier.Classify(err)
	}

	GetLogger(op, n).Log("msg", a.done)
	return result, nil
}

// search is request for operations answering with a single item.
func search(ctx context.Context, op Operation, n *near.Near, a activity, bundle *zapier.Bundle, call nodeCall) (interface{}, *zapier.Error) {
	result, zerr := request(ctx, op, n, a, bundle, call)
	if zerr != nil {
		return nil, zerr
	}
	output, zerr := withID(result)
	if zerr != nil {
		return nil, zerr
	}
	return []zapier.Output{output}, nil
}

func withID(result interface{}) (zapier.Output, *zapier.Error) {
	output, err := zapier.WithID(result)
	if err != nil {
		return nil, zapier.Classify(err)
	}
	return output, nil
}

func logData(fields map[string]interface{}) string {
	raw, err := json.Marshal(utils.Redact(fields, redactedFields...))
	if err != nil {
		return "{}"
	}
	return string(raw)
}
