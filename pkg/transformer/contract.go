package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/contract"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/normalize"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/pkg/errors"
)

// ViewContractCode implements Operation
type ViewContractCode struct {
	*near.Pool
}

func (o *ViewContractCode) Key() string { return "viewContractCode" }

func (o *ViewContractCode) Kind() Kind { return KindSearch }

func (o *ViewContractCode) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("contract code"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ViewCode(ctx, in.AccountID, block)
	})
}

// ViewContractState implements Operation
type ViewContractState struct {
	*near.Pool
}

func (o *ViewContractState) Key() string { return "viewContractState" }

func (o *ViewContractState) Kind() Kind { return KindSearch }

func (o *ViewContractState) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		accountInput
		Prefix *string `json:"prefix"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}

	prefix := normalize.EncodePrefix(in.Prefix)
	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("contract state"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ViewState(ctx, in.AccountID, prefix, block)
	})
}

// ViewContractCodeChanges implements Operation
type ViewContractCodeChanges struct {
	*near.Pool
}

func (o *ViewContractCodeChanges) Key() string { return "viewContractCodeChanges" }

func (o *ViewContractCodeChanges) Kind() Kind { return KindSearch }

func (o *ViewContractCodeChanges) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountsInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountIDs(in.AccountIDs); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("contract code changes"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ContractCodeChanges(ctx, in.AccountIDs, block)
	})
}

// ViewContractStateChanges implements Operation
type ViewContractStateChanges struct {
	*near.Pool
}

func (o *ViewContractStateChanges) Key() string { return "viewContractStateChanges" }

func (o *ViewContractStateChanges) Kind() Kind { return KindSearch }

func (o *ViewContractStateChanges) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		accountsInput
		Prefix *string `json:"prefix"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountIDs(in.AccountIDs); zerr != nil {
		return nil, zerr
	}

	prefix := normalize.EncodePrefix(in.Prefix)
	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("contract state changes"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ContractStateChanges(ctx, in.AccountIDs, prefix, block)
	})
}

// CallViewFunction implements Operation
type CallViewFunction struct {
	*near.Pool
}

func (o *CallViewFunction) Key() string { return "callViewFunction" }

func (o *CallViewFunction) Kind() Kind { return KindSearch }

func (o *CallViewFunction) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		accountInput
		MethodName string                 `json:"methodName" validate:"required"`
		Arguments  map[string]interface{} `json:"arguments"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid contract ID"); zerr != nil {
		return nil, zerr
	}

	args, err := normalize.EncodeArguments(in.Arguments)
	if err != nil {
		return nil, zapier.NewInvalidDataError(err.Error())
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	result, zerr := request(ctx, o, nodeFor(o.Pool, bundle, in.Network), calling("contract function"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.CallFunction(ctx, in.AccountID, in.MethodName, args, block)
	})
	if zerr != nil {
		return nil, zerr
	}

	call := result.(*near.CallResult)
	parsed, err := normalize.ParseResultBuffer(call.Result)
	if err != nil {
		return nil, zapier.Classify(errors.Wrapf(err, "%s returned a result that is not JSON", in.MethodName))
	}

	output, zerr := withID(call)
	if zerr != nil {
		return nil, zerr
	}
	output["parsed_result"] = parsed

	return []zapier.Output{output}, nil
}

type methodName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetMethodNames implements Operation
type GetMethodNames struct {
	*near.Pool
}

func (o *GetMethodNames) Key() string { return "getMethodNames" }

func (o *GetMethodNames) Kind() Kind { return KindSearch }

func (o *GetMethodNames) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	return o.perform(ctx, o, bundle)
}

func (o *GetMethodNames) perform(ctx context.Context, op Operation, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	result, zerr := request(ctx, op, nodeFor(o.Pool, bundle, in.Network), getting("contract method names"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		code, err := n.ViewCode(ctx, in.AccountID, block)
		if err != nil {
			return nil, err
		}
		return contract.MethodNames(code.CodeBase64)
	})
	if zerr != nil {
		return nil, zerr
	}

	names := result.([]string)
	methods := make([]methodName, 0, len(names))
	for _, name := range names {
		methods = append(methods, methodName{ID: name, Name: name})
	}
	return methods, nil
}

// GetMethodNamesTrigger is GetMethodNames polled as a trigger, used to fill
// method name dropdowns.
type GetMethodNamesTrigger struct {
	*GetMethodNames
}

func (o *GetMethodNamesTrigger) Kind() Kind { return KindTrigger }

func (o *GetMethodNamesTrigger) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	return o.perform(ctx, o, bundle)
}
